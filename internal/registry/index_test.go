package registry

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/eldtechnologies/agentindex/internal/format"
	"github.com/eldtechnologies/agentindex/internal/models"
	"github.com/eldtechnologies/agentindex/internal/subgraph"
)

// fakeIndex is an in-memory stand-in for the subgraph. It interprets the
// filters and ordering written into the query text and variables.
type fakeIndex struct {
	agents   []models.Agent
	feedback map[string][]models.Feedback
	stats    map[string]*models.AgentStats
	err      error
	calls    []subgraph.Query
}

func (f *fakeIndex) Run(ctx context.Context, q subgraph.Query, out any) error {
	f.calls = append(f.calls, q)
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}

	var data map[string]any
	if strings.Contains(q.Text, "agentStats(id: $id)") {
		data = f.detail(q)
	} else {
		data = map[string]any{"agents": f.list(q)}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeIndex) list(q subgraph.Query) []models.Agent {
	rows := slices.Clone(f.agents)

	// The index only compares against null; an empty endpoint still matches.
	if strings.Contains(q.Text, "mcpEndpoint_not: null") {
		rows = slices.DeleteFunc(rows, func(a models.Agent) bool {
			return a.RegistrationFile == nil || a.RegistrationFile.MCPEndpoint == nil
		})
	}
	if strings.Contains(q.Text, "a2aEndpoint_not: null") {
		rows = slices.DeleteFunc(rows, func(a models.Agent) bool {
			return a.RegistrationFile == nil || a.RegistrationFile.A2AEndpoint == nil
		})
	}

	orderBy, dir := "createdAt", "desc"
	if needle, ok := q.Vars["nameContains"].(string); ok {
		needle = strings.ToLower(needle)
		rows = slices.DeleteFunc(rows, func(a models.Agent) bool {
			rf := a.RegistrationFile
			return rf == nil || rf.Name == nil || !strings.Contains(strings.ToLower(*rf.Name), needle)
		})
	} else {
		orderBy = q.Vars["orderBy"].(string)
		dir = q.Vars["orderDirection"].(string)
	}

	slices.SortStableFunc(rows, func(x, y models.Agent) int {
		c := cmp.Compare(sortValue(x, orderBy), sortValue(y, orderBy))
		if dir == "desc" {
			return -c
		}
		return c
	})

	skip, first := q.Vars["skip"].(int), q.Vars["first"].(int)
	if skip >= len(rows) {
		return []models.Agent{}
	}
	rows = rows[skip:]
	if len(rows) > first {
		rows = rows[:first]
	}
	return rows
}

func sortValue(a models.Agent, field string) int64 {
	switch field {
	case "updatedAt":
		return format.ParseCount(a.UpdatedAt)
	case "lastActivity":
		return format.ParseCount(a.LastActivity)
	case "totalFeedback":
		return format.ParseCount(a.TotalFeedback)
	default:
		return format.ParseCount(a.CreatedAt)
	}
}

func (f *fakeIndex) detail(q subgraph.Query) map[string]any {
	id := q.Vars["id"].(string)
	data := map[string]any{"agent": nil, "agentStats": nil}
	if s, ok := f.stats[id]; ok {
		data["agentStats"] = s
	}

	idx := slices.IndexFunc(f.agents, func(a models.Agent) bool { return a.ID == id })
	if idx < 0 {
		return data
	}

	rows := slices.Clone(f.feedback[id])
	if strings.Contains(q.Text, "isRevoked: false") {
		rows = slices.DeleteFunc(rows, func(fb models.Feedback) bool { return fb.IsRevoked })
	}
	slices.SortStableFunc(rows, func(x, y models.Feedback) int {
		return cmp.Compare(format.ParseCount(y.CreatedAt), format.ParseCount(x.CreatedAt))
	})
	if first := q.Vars["feedbackFirst"].(int); len(rows) > first {
		rows = rows[:first]
	}

	data["agent"] = agentWithFeedback{Agent: f.agents[idx], Feedback: rows}
	return data
}

func strPtr(s string) *string { return &s }

func testAgent(n int, feedback string) models.Agent {
	id := "11155111:" + strconv.Itoa(n)
	ts := strconv.Itoa(1_700_000_000 + n*60)
	return models.Agent{
		ID:            id,
		AgentID:       id,
		ChainID:       "11155111",
		Owner:         "0x00000000000000000000000000000000000000" + strconv.Itoa(10+n),
		Operators:     []string{},
		CreatedAt:     ts,
		UpdatedAt:     ts,
		LastActivity:  ts,
		TotalFeedback: feedback,
	}
}
