package http

import (
	"github.com/gorilla/mux"
	"github.com/redhatinsights/platform-go-middlewares/v2/identity"

	"analytics-exporter/internal/core/usecases"
)

const APIPrefix = "/api/analytics/v1"

// SetupRoutes registers the export API. downloads may be nil when exports are
// written to disk, in which case the download route answers 404.
func SetupRoutes(registry *usecases.Registry, runService *usecases.ExportRunService, downloads DownloadStore) *mux.Router {
	router := mux.NewRouter()
	handler := NewExportHandler(registry, runService, downloads)

	api := router.PathPrefix(APIPrefix).Subrouter()
	api.Use(LoggingMiddleware)
	api.Use(identity.EnforceIdentity)

	registerRoutes(api, handler)

	return router
}

func registerRoutes(api *mux.Router, handler *ExportHandler) {
	// Export surface
	api.HandleFunc("/export", handler.GetExport).Methods("GET")
	api.HandleFunc("/export/open", handler.OpenExport).Methods("POST")
	api.HandleFunc("/export/close", handler.CloseExport).Methods("POST")
	api.HandleFunc("/export/configuration", handler.ConfigureExport).Methods("PUT")

	// Job control
	api.HandleFunc("/export/start", handler.StartExport).Methods("POST")
	api.HandleFunc("/export/cancel", handler.CancelExport).Methods("POST")

	// Run history
	api.HandleFunc("/export/runs", handler.GetExportRuns).Methods("GET")
	api.HandleFunc("/export/runs/{id}", handler.GetExportRun).Methods("GET")

	api.HandleFunc("/formats", handler.GetFormats).Methods("GET")
	api.HandleFunc("/downloads/{filename}", handler.Download).Methods("GET")
}
