package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/redhatinsights/platform-go-middlewares/v2/identity"

	"analytics-exporter/internal/core/domain"
	"analytics-exporter/internal/core/usecases"
	"analytics-exporter/internal/shell/sink"
)

// DownloadStore serves files saved by an owner's in-memory sink
type DownloadStore interface {
	Open(owner, filename string) (sink.File, error)
}

type ExportHandler struct {
	registry   *usecases.Registry
	runService *usecases.ExportRunService
	downloads  DownloadStore
}

func NewExportHandler(registry *usecases.Registry, runService *usecases.ExportRunService, downloads DownloadStore) *ExportHandler {
	return &ExportHandler{
		registry:   registry,
		runService: runService,
		downloads:  downloads,
	}
}

func (h *ExportHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	surface, ok := h.surfaceFor(w, r, "GetExport")
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, ToExportStateResponse(surface, surface.IsOpen()))
}

func (h *ExportHandler) OpenExport(w http.ResponseWriter, r *http.Request) {
	surface, ok := h.surfaceFor(w, r, "OpenExport")
	if !ok {
		return
	}

	if err := surface.Open(); err != nil {
		log.Printf("[DEBUG] HTTP OpenExport failed - %v", err)
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ToExportStateResponse(surface, true))
}

func (h *ExportHandler) CloseExport(w http.ResponseWriter, r *http.Request) {
	surface, ok := h.surfaceFor(w, r, "CloseExport")
	if !ok {
		return
	}

	surface.Close()
	respondWithJSON(w, http.StatusOK, ToExportStateResponse(surface, false))
}

func (h *ExportHandler) ConfigureExport(w http.ResponseWriter, r *http.Request) {
	var req ConfigurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[DEBUG] HTTP ConfigureExport failed - JSON decode error: %v", err)
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidJSON(err)})
		return
	}

	surface, ok := h.surfaceFor(w, r, "ConfigureExport")
	if !ok {
		return
	}

	update, err := req.ToUpdate()
	if err != nil {
		log.Printf("[DEBUG] HTTP ConfigureExport failed - validation error: %v", err)
		respondWithDomainError(w, err)
		return
	}

	if _, err := surface.Configure(update); err != nil {
		log.Printf("[DEBUG] HTTP ConfigureExport failed - %v", err)
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ToExportStateResponse(surface, surface.IsOpen()))
}

func (h *ExportHandler) StartExport(w http.ResponseWriter, r *http.Request) {
	surface, ok := h.surfaceFor(w, r, "StartExport")
	if !ok {
		return
	}

	if !surface.StartExport() {
		if surface.Job().IsLive() {
			log.Printf("[DEBUG] HTTP StartExport rejected - job already live")
			respondWithErrors(w, http.StatusConflict, []ErrorObject{errorExportInProgress()})
			return
		}
		log.Printf("[DEBUG] HTTP StartExport rejected - no metrics selected")
		respondWithErrors(w, http.StatusConflict, []ErrorObject{errorNoMetricsSelected()})
		return
	}

	job := surface.Job()
	log.Printf("[DEBUG] HTTP StartExport success - job %s started, format=%s", job.ID, job.Format)
	respondWithJSON(w, http.StatusAccepted, ToJobResponse(job))
}

func (h *ExportHandler) CancelExport(w http.ResponseWriter, r *http.Request) {
	surface, ok := h.surfaceFor(w, r, "CancelExport")
	if !ok {
		return
	}

	cancelled := surface.Cancel()
	log.Printf("[DEBUG] HTTP CancelExport - cancelled=%t", cancelled)
	respondWithJSON(w, http.StatusOK, ToJobResponse(surface.Job()))
}

func (h *ExportHandler) GetExportRuns(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r, "GetExportRuns")
	if !ok {
		return
	}

	offset, limit := parsePaginationParams(r.URL)

	runs, total, err := h.runService.ListRunsForOwner(owner, offset, limit)
	if err != nil {
		log.Printf("[DEBUG] HTTP GetExportRuns failed - %v", err)
		respondWithErrors(w, http.StatusInternalServerError, []ErrorObject{errorInternalServer()})
		return
	}

	respondWithJSON(w, http.StatusOK, buildPaginatedResponse(r.URL, offset, limit, total, ToExportRunResponseList(runs)))
}

func (h *ExportHandler) GetExportRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	owner, ok := ownerFromRequest(w, r, "GetExportRun")
	if !ok {
		return
	}

	run, err := h.runService.GetRunForOwner(id, owner)
	if err != nil {
		if errors.Is(err, domain.ErrExportRunNotFound) {
			respondWithErrors(w, http.StatusNotFound, []ErrorObject{errorNotFound("export run", id)})
			return
		}
		log.Printf("[DEBUG] HTTP GetExportRun failed - %v", err)
		respondWithErrors(w, http.StatusInternalServerError, []ErrorObject{errorInternalServer()})
		return
	}

	respondWithJSON(w, http.StatusOK, ToExportRunResponse(run))
}

func (h *ExportHandler) GetFormats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, ToFormatResponseList())
}

// Download serves a file saved by the requesting owner's sink
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	owner, ok := ownerFromRequest(w, r, "Download")
	if !ok {
		return
	}

	if h.downloads == nil {
		respondWithError(w, http.StatusNotFound, "Downloads Unavailable", "Exports are saved to the server filesystem and cannot be downloaded")
		return
	}

	file, err := h.downloads.Open(owner, filename)
	if err != nil {
		if errors.Is(err, domain.ErrDownloadNotFound) {
			respondWithErrors(w, http.StatusNotFound, []ErrorObject{errorNotFound("download", filename)})
			return
		}
		respondWithErrors(w, http.StatusInternalServerError, []ErrorObject{errorInternalServer()})
		return
	}

	w.Header().Set("Content-Type", file.Mime)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Content); err != nil {
		log.Printf("[DEBUG] HTTP Download - warning: failed to write %s: %v", filename, err)
		return
	}
	DownloadsServed.Inc()
}

func (h *ExportHandler) surfaceFor(w http.ResponseWriter, r *http.Request, op string) (*usecases.Surface, bool) {
	owner, ok := ownerFromRequest(w, r, op)
	if !ok {
		return nil, false
	}
	return h.registry.Get(owner), true
}

func ownerFromRequest(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	ident := identity.Get(r.Context())
	if !isValidIdentity(ident) {
		log.Printf("[DEBUG] %s failed - invalid identity", op)
		respondWithErrors(w, http.StatusBadRequest, []ErrorObject{errorInvalidIdentity()})
		return "", false
	}
	return ownerKey(ident), true
}

func ownerKey(ident identity.XRHID) string {
	user := ident.Identity.User.UserID
	if user == "" {
		user = ident.Identity.User.Username
	}
	return domain.OwnerKey(ident.Identity.OrgID, user)
}

func isValidIdentity(ident identity.XRHID) bool {
	if ident.Identity.OrgID == "" || ident.Identity.User == nil {
		return false
	}
	return ident.Identity.User.UserID != "" || ident.Identity.User.Username != ""
}

func respondWithJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[DEBUG] HTTP - warning: failed to encode response: %v", err)
	}
}
