package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/eldtechnologies/agentindex/internal/models"
	"github.com/eldtechnologies/agentindex/internal/registry"
)

const (
	defaultPageSize = 12
	maxQueryLength  = 100
)

// ListAgentsResponse represents one page of the agent listing.
type ListAgentsResponse struct {
	Success  bool           `json:"success"`
	Items    []models.Agent `json:"items"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
	HasMore  bool           `json:"hasMore"`
}

// AgentResponse represents the agent detail response.
type AgentResponse struct {
	Success bool                     `json:"success"`
	Agent   *models.AgentWithDetails `json:"agent"`
}

// ListAgents handles listing and searching agents.
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	page, err := intParam(params, "page", 1)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	pageSize, err := intParam(params, "pageSize", defaultPageSize)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "pageSize must be an integer")
		return
	}

	query := params.Get("q")
	if utf8.RuneCountInString(query) > maxQueryLength {
		h.Error(w, http.StatusBadRequest, "query too long (max 100 chars)")
		return
	}

	sortKey, sortDir, err := registry.ParseSort(params.Get("sort"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	protocol, err := registry.ParseProtocol(params.Get("protocol"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.registry.ListAgents(r.Context(), registry.ListRequest{
		Page:          page,
		PageSize:      pageSize,
		SortKey:       sortKey,
		SortDirection: sortDir,
		Protocol:      protocol,
		Query:         query,
	})
	if err != nil {
		h.registryError(w, r, err)
		return
	}

	h.JSON(w, http.StatusOK, ListAgentsResponse{
		Success:  true,
		Items:    res.Items,
		Page:     res.Page,
		PageSize: res.PageSize,
		HasMore:  res.HasMore,
	})
}

// GetAgent handles the agent detail lookup.
func (h *Handler) GetAgent(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when it is set, so the param is still escaped.
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		var err error
		if id, err = url.PathUnescape(id); err != nil {
			h.Error(w, http.StatusBadRequest, "invalid agent ID")
			return
		}
	}
	if id == "" {
		h.Error(w, http.StatusBadRequest, "invalid agent ID")
		return
	}

	agent, err := h.registry.GetAgentDetail(r.Context(), id)
	if err != nil {
		h.registryError(w, r, err)
		return
	}

	h.JSON(w, http.StatusOK, AgentResponse{Success: true, Agent: agent})
}

// registryError maps registry failures to distinct statuses.
func (h *Handler) registryError(w http.ResponseWriter, r *http.Request, err error) {
	var netErr net.Error

	switch {
	case errors.Is(err, registry.ErrInvalidRequest):
		h.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, registry.ErrNotFound):
		h.Error(w, http.StatusNotFound, "Agent not found")
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		h.logger.Error().
			Err(err).
			Str("path", r.URL.Path).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("subgraph timed out")
		h.Error(w, http.StatusGatewayTimeout, "subgraph timed out")
	default:
		h.logger.Error().
			Err(err).
			Str("path", r.URL.Path).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("subgraph query failed")
		h.Error(w, http.StatusBadGateway, "subgraph query failed")
	}
}

// intParam parses an optional integer query parameter.
func intParam(params url.Values, key string, defaultValue int) (int, error) {
	raw := params.Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}
