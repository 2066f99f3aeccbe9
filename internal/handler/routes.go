package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers the health check and the /api/v1 dashboard routes.
func NewRouter(h *DashboardHandler) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID)

	// Health check
	r.HandleFunc("/health", Health).Methods(http.MethodGet)

	// API v1 subrouter
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/weather", h.GetWeather).Methods(http.MethodGet)
	api.HandleFunc("/nearby", h.GetNearby).Methods(http.MethodGet)

	return r
}
