package http

import (
	"net/http"

	"github.com/go-chi/render"
)

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Render implements the render.Renderer interface
func (h *HealthResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// HealthHandler reports service liveness
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, &HealthResponse{Status: "ok", Service: "assetcli"})
}
