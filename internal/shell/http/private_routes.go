package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"analytics-exporter/internal/core/usecases"
)

// SurfaceStatus is the admin view of one owner's export surface
type SurfaceStatus struct {
	Owner string      `json:"owner"`
	Open  bool        `json:"open"`
	Job   JobResponse `json:"job"`
}

// SetupPrivateRoutes serves unauthenticated internal endpoints on the private port
func SetupPrivateRoutes(registry *usecases.Registry) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	router.HandleFunc("/surfaces", func(w http.ResponseWriter, r *http.Request) {
		owners := registry.Owners()
		statuses := make([]SurfaceStatus, 0, len(owners))
		for _, owner := range owners {
			surface := registry.Get(owner)
			statuses = append(statuses, SurfaceStatus{
				Owner: owner,
				Open:  surface.IsOpen(),
				Job:   ToJobResponse(surface.Job()),
			})
		}
		respondWithJSON(w, http.StatusOK, statuses)
	}).Methods("GET")

	return router
}
