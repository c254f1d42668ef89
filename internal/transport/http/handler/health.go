package handler

import "net/http"

// HealthHandler exposes a liveness probe.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "pong")
}
