package handler

import (
	"net/http"

	"github.com/kdduha/chatgateway/internal/config"
)

type HealthResponse struct {
	Status       string          `json:"status" example:"ok"`
	Models       []string        `json:"models"`
	Capabilities map[string]bool `json:"capabilities"`
}

type HealthHandler struct {
	resp HealthResponse
}

// NewHealthHandler snapshots the configured capabilities; configuration
// is read-only after startup.
func NewHealthHandler(creds config.Credentials, chatModels []string) *HealthHandler {
	return &HealthHandler{resp: HealthResponse{
		Status: "ok",
		Models: chatModels,
		Capabilities: map[string]bool{
			"webSearch":        creds.Perplexity,
			"imageGptImage":    creds.OpenAI,
			"imageFluxKontext": creds.Replicate,
			"videoGeneration":  creds.Replicate,
			"speechGeneration": creds.Wavespeed,
		},
	}}
}

// Health godoc
// @Summary Service health
// @Description Reports served chat models and which generation capabilities have credentials.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.resp)
}
