package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/agentindex/internal/models"
	"github.com/eldtechnologies/agentindex/internal/registry"
	"github.com/eldtechnologies/agentindex/internal/store"
)

// AgentRegistry is the query surface the handlers serve.
type AgentRegistry interface {
	ListAgents(ctx context.Context, req registry.ListRequest) (*registry.Page, error)
	GetAgentDetail(ctx context.Context, id string) (*models.AgentWithDetails, error)
}

// IndexPinger probes the remote index and reports its indexed block.
type IndexPinger interface {
	Ping(ctx context.Context) (int64, error)
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	registry AgentRegistry
	index    IndexPinger
	redis    *store.RedisStore
	logger   zerolog.Logger
}

// NewHandler creates a new Handler. redis may be nil.
func NewHandler(reg AgentRegistry, index IndexPinger, redis *store.RedisStore, logger zerolog.Logger) *Handler {
	return &Handler{registry: reg, index: index, redis: redis, logger: logger}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, ErrorResponse{Success: false, Error: message})
}
