package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chromamcp/internal/service"
	"chromamcp/test/mocks"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_HandleHealthCheck(t *testing.T) {
	documents := service.NewDocumentService(mocks.NewMockCollection(), 100, logr.Discard())
	h := NewHealthHandler(service.NewMCPServerService(documents))

	router := mux.NewRouter()
	router.HandleFunc("/health", h.HandleHealthCheck).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", resp.Data["status"])
	assert.Equal(t, "chroma", resp.Data["name"])
	assert.Equal(t, "0.1.0", resp.Data["version"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
