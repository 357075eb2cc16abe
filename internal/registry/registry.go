// Package registry turns UI-facing list, search and detail requests into
// queries against the agent subgraph and shapes the results.
package registry

import (
	"context"

	"github.com/eldtechnologies/agentindex/internal/models"
	"github.com/eldtechnologies/agentindex/internal/subgraph"
)

// Options configures a Registry.
type Options struct {
	MaxPageSize   int
	FeedbackLimit int
}

// Registry is the read-only query surface over the subgraph.
type Registry struct {
	planner       *Planner
	aggregator    *Aggregator
	feedbackLimit int
}

// New creates a Registry whose planner and aggregator share runner.
func New(runner subgraph.Runner, opts Options) *Registry {
	limit := opts.FeedbackLimit
	if limit <= 0 {
		limit = DefaultFeedbackLimit
	}
	limit = min(limit, MaxFeedbackLimit)
	return &Registry{
		planner:       NewPlanner(runner, opts.MaxPageSize),
		aggregator:    NewAggregator(runner),
		feedbackLimit: limit,
	}
}

// ListAgents returns one page of agents for a listing or a name search.
func (r *Registry) ListAgents(ctx context.Context, req ListRequest) (*Page, error) {
	return r.planner.List(ctx, req)
}

// GetAgentDetail returns the detail view of one agent or ErrNotFound.
func (r *Registry) GetAgentDetail(ctx context.Context, id string) (*models.AgentWithDetails, error) {
	return r.aggregator.FetchDetail(ctx, id, r.feedbackLimit)
}
