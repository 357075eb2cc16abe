package registry

import (
	"cmp"
	"context"
	"slices"

	"github.com/eldtechnologies/agentindex/internal/format"
	"github.com/eldtechnologies/agentindex/internal/metrics"
	"github.com/eldtechnologies/agentindex/internal/models"
	"github.com/eldtechnologies/agentindex/internal/subgraph"
)

const (
	// DefaultFeedbackLimit is the number of feedback rows in a detail view.
	DefaultFeedbackLimit = 10

	// MaxFeedbackLimit matches the index's cap on first.
	MaxFeedbackLimit = 1000
)

type agentWithFeedback struct {
	models.Agent
	Feedback []models.Feedback `json:"feedback"`
}

type detailResponse struct {
	Agent      *agentWithFeedback `json:"agent"`
	AgentStats *models.AgentStats `json:"agentStats"`
}

// Aggregator builds the detail view of one agent from a single round trip.
type Aggregator struct {
	runner subgraph.Runner
}

// NewAggregator creates an aggregator over runner.
func NewAggregator(runner subgraph.Runner) *Aggregator {
	return &Aggregator{runner: runner}
}

// FetchDetail returns the agent with up to feedbackLimit recent non-revoked
// feedback rows and its stats. id is passed to the index verbatim.
// A missing agent is ErrNotFound even when stats exist for id.
func (a *Aggregator) FetchDetail(ctx context.Context, id string, feedbackLimit int) (*models.AgentWithDetails, error) {
	if id == "" {
		return nil, invalidf("agent id is required")
	}
	if feedbackLimit < 1 || feedbackLimit > MaxFeedbackLimit {
		return nil, invalidf("feedbackLimit must be between 1 and %d, got %d", MaxFeedbackLimit, feedbackLimit)
	}

	q := subgraph.Query{
		Name: detailQueryName,
		Text: detailQuery,
		Vars: map[string]any{
			"id":            id,
			"feedbackFirst": feedbackLimit,
		},
	}

	var resp detailResponse
	if err := a.runner.Run(ctx, q, &resp); err != nil {
		metrics.DetailLookups.WithLabelValues("error").Inc()
		return nil, &RemoteQueryFailure{Op: q.Name, Err: err}
	}

	if resp.Agent == nil {
		metrics.DetailLookups.WithLabelValues("not_found").Inc()
		return nil, ErrNotFound
	}

	if resp.AgentStats == nil {
		metrics.DetailLookups.WithLabelValues("no_stats").Inc()
	} else {
		metrics.DetailLookups.WithLabelValues("found").Inc()
	}

	return &models.AgentWithDetails{
		Agent:    resp.Agent.Agent,
		Feedback: recentFeedback(resp.Agent.Feedback, feedbackLimit),
		Stats:    resp.AgentStats,
	}, nil
}

// recentFeedback drops revoked rows, orders newest first and caps at limit.
func recentFeedback(rows []models.Feedback, limit int) []models.Feedback {
	out := make([]models.Feedback, 0, min(len(rows), limit))
	for _, fb := range rows {
		if !fb.IsRevoked {
			out = append(out, fb)
		}
	}
	slices.SortStableFunc(out, func(x, y models.Feedback) int {
		return cmp.Compare(format.ParseCount(y.CreatedAt), format.ParseCount(x.CreatedAt))
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
