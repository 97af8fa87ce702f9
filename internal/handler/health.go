package handler

import (
	"encoding/json"
	"net/http"

	"chromamcp/internal/models"
	"chromamcp/internal/service"
)

type HealthHandler struct {
	service *service.MCPServerService
}

func NewHealthHandler(service *service.MCPServerService) *HealthHandler {
	return &HealthHandler{
		service: service,
	}
}

func (h *HealthHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	info := h.service.GetServerInfo()
	response := &models.APIResponse{
		Success: true,
		Data: map[string]string{
			"status":  "healthy",
			"name":    info.Name,
			"version": info.Version,
		},
		Message: "Server is running",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
