package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/eldtechnologies/agentindex/internal/handlers"
	"github.com/eldtechnologies/agentindex/internal/models"
	"github.com/eldtechnologies/agentindex/internal/registry"
)

type stubRegistry struct{}

func (stubRegistry) ListAgents(ctx context.Context, req registry.ListRequest) (*registry.Page, error) {
	return &registry.Page{Items: []models.Agent{}, Page: req.Page, PageSize: req.PageSize}, nil
}

func (stubRegistry) GetAgentDetail(ctx context.Context, id string) (*models.AgentWithDetails, error) {
	if id != "11155111:1" {
		return nil, registry.ErrNotFound
	}
	return &models.AgentWithDetails{Agent: models.Agent{ID: id}}, nil
}

type stubPinger struct{}

func (stubPinger) Ping(ctx context.Context) (int64, error) { return 1, nil }

func newTestRouter() http.Handler {
	logger := zerolog.Nop()
	h := handlers.NewHandler(stubRegistry{}, stubPinger{}, nil, logger)
	return NewRouter(logger, h, nil, RouterConfig{})
}

func TestRoutes(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/agents", http.StatusOK},
		{http.MethodGet, "/api/agents?page=2&pageSize=5", http.StatusOK},
		{http.MethodGet, "/api/agents/11155111:1", http.StatusOK},
		{http.MethodGet, "/api/agents/11155111:2", http.StatusNotFound},
		{http.MethodGet, "/api/agents?page=x", http.StatusBadRequest},
		{http.MethodGet, "/api/agents?q=v1..2", http.StatusOK},
		{http.MethodPost, "/api/agents", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
		assert.Equal(t, tt.want, rec.Code, "%s %s", tt.method, tt.target)
	}
}

func TestRouterSetsHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/agents", nil))

	assert.Equal(t, "default-src 'none'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/agents", nil)
	req.Header.Set("Origin", "https://explorer.example")
	req.Header.Set("Access-Control-Request-Method", "GET")

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
