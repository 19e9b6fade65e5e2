package handler

import (
	"net/http"

	"github.com/sakif/marvel-catalog/internal/service"
)

const greeting = "Marvel Character Database API"

// HandleRoot answers GET /api/.
func HandleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: greeting})
}

// HealthResponse is the GET /api/healthz body.
type HealthResponse struct {
	Status string             `json:"status"`
	Cache  service.CacheStats `json:"cache"`
}

// HandleHealth reports liveness and memo cache occupancy.
func (h *CharacterHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Cache:  h.service.Stats(),
	})
}
