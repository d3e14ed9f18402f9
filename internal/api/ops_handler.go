package api

import (
	"net/http"

	"scribe-ai/backend/internal/interfaces"
)

// OpsHandler exposes runtime observability and the operational reset.
type OpsHandler struct {
	service interfaces.OpsService
}

func NewOpsHandler(svc interfaces.OpsService) *OpsHandler {
	return &OpsHandler{service: svc}
}

func (h *OpsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *OpsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.service.Reset()
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}
