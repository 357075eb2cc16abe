package registry

import (
	"context"
	"math"
	"strings"

	"github.com/eldtechnologies/agentindex/internal/metrics"
	"github.com/eldtechnologies/agentindex/internal/models"
	"github.com/eldtechnologies/agentindex/internal/subgraph"
)

// SortKey is an agent ordering field understood by the index.
type SortKey string

const (
	SortCreatedAt     SortKey = "createdAt"
	SortUpdatedAt     SortKey = "updatedAt"
	SortLastActivity  SortKey = "lastActivity"
	SortTotalFeedback SortKey = "totalFeedback"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// DefaultMaxPageSize bounds PageSize when Options leave it unset.
const DefaultMaxPageSize = 100

// ListRequest describes one page of a listing or a name search.
// A non-empty Query makes it a search, which ignores the sort fields.
type ListRequest struct {
	Page          int
	PageSize      int
	SortKey       SortKey
	SortDirection SortDirection
	Protocol      Protocol
	Query         string
}

// Page is one window of agents.
// HasMore is true when the window came back full; the next page may still be empty.
type Page struct {
	Items    []models.Agent `json:"items"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
	HasMore  bool           `json:"hasMore"`
}

// Planner picks one query template for a ListRequest and runs it.
type Planner struct {
	runner      subgraph.Runner
	maxPageSize int
}

// NewPlanner creates a planner. maxPageSize <= 0 means DefaultMaxPageSize.
func NewPlanner(runner subgraph.Runner, maxPageSize int) *Planner {
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	return &Planner{runner: runner, maxPageSize: maxPageSize}
}

// Plan validates req and returns the single query that serves it.
func (p *Planner) Plan(req ListRequest) (subgraph.Query, error) {
	if req.Page < 1 {
		return subgraph.Query{}, invalidf("page must be >= 1, got %d", req.Page)
	}
	if req.PageSize < 1 || req.PageSize > p.maxPageSize {
		return subgraph.Query{}, invalidf("pageSize must be between 1 and %d, got %d", p.maxPageSize, req.PageSize)
	}
	// skip is a GraphQL Int, so the window must start below 2^31.
	if req.Page-1 > math.MaxInt32/req.PageSize {
		return subgraph.Query{}, invalidf("page %d is out of range for pageSize %d", req.Page, req.PageSize)
	}
	if !validProtocol(req.Protocol) {
		return subgraph.Query{}, invalidf("unknown protocol %q", req.Protocol)
	}

	text := strings.TrimSpace(req.Query)
	mode := ModeList
	if text != "" {
		mode = ModeSearch
	}

	vars := map[string]any{
		"first": req.PageSize,
		"skip":  (req.Page - 1) * req.PageSize,
	}

	if mode == ModeSearch {
		vars["nameContains"] = text
	} else {
		key, dir := req.SortKey, req.SortDirection
		if key == "" {
			key = SortCreatedAt
		}
		if dir == "" {
			dir = SortDesc
		}
		if !validSortKey(key) {
			return subgraph.Query{}, invalidf("unknown sort key %q", key)
		}
		if dir != SortAsc && dir != SortDesc {
			return subgraph.Query{}, invalidf("unknown sort direction %q", dir)
		}
		vars["orderBy"] = string(key)
		vars["orderDirection"] = string(dir)
	}

	tpl := templates[templateKey{mode, req.Protocol}]
	return subgraph.Query{Name: tpl.name, Text: tpl.text, Vars: vars}, nil
}

// List runs the planned query and returns one page of agents.
func (p *Planner) List(ctx context.Context, req ListRequest) (*Page, error) {
	q, err := p.Plan(req)
	if err != nil {
		return nil, err
	}

	mode := ModeList
	if _, ok := q.Vars["nameContains"]; ok {
		mode = ModeSearch
		metrics.SearchQueries.Inc()
	}
	metrics.ListRequests.WithLabelValues(mode.String(), req.Protocol.String()).Inc()

	var resp struct {
		Agents []models.Agent `json:"agents"`
	}
	if err := p.runner.Run(ctx, q, &resp); err != nil {
		return nil, &RemoteQueryFailure{Op: q.Name, Err: err}
	}

	items := resp.Agents
	if items == nil {
		items = []models.Agent{}
	}

	return &Page{
		Items:    items,
		Page:     req.Page,
		PageSize: req.PageSize,
		HasMore:  len(items) == req.PageSize,
	}, nil
}

// ParseSort parses "key:direction" as used in query strings. Empty parts
// default to createdAt and desc.
func ParseSort(s string) (SortKey, SortDirection, error) {
	keyStr, dirStr, _ := strings.Cut(strings.TrimSpace(s), ":")
	key, dir := SortKey(keyStr), SortDirection(strings.ToLower(dirStr))
	if key == "" {
		key = SortCreatedAt
	}
	if dir == "" {
		dir = SortDesc
	}
	if !validSortKey(key) {
		return "", "", invalidf("unknown sort key %q", keyStr)
	}
	if dir != SortAsc && dir != SortDesc {
		return "", "", invalidf("unknown sort direction %q", dirStr)
	}
	return key, dir, nil
}

// ParseProtocol parses a protocol filter; "" means no filter.
func ParseProtocol(s string) (Protocol, error) {
	p := Protocol(strings.ToLower(strings.TrimSpace(s)))
	if !validProtocol(p) {
		return "", invalidf("unknown protocol %q", s)
	}
	return p, nil
}

func validSortKey(k SortKey) bool {
	switch k {
	case SortCreatedAt, SortUpdatedAt, SortLastActivity, SortTotalFeedback:
		return true
	}
	return false
}

func validProtocol(p Protocol) bool {
	switch p {
	case ProtocolAny, ProtocolMCP, ProtocolA2A:
		return true
	}
	return false
}
