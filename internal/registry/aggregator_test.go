package registry

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldtechnologies/agentindex/internal/format"
	"github.com/eldtechnologies/agentindex/internal/models"
)

func feedbackAt(id string, ts int, revoked bool) models.Feedback {
	return models.Feedback{
		ID:            id,
		Value:         "80",
		ClientAddress: "0xclient",
		CreatedAt:     strconv.Itoa(ts),
		IsRevoked:     revoked,
		Responses:     []models.FeedbackResponse{},
	}
}

func TestFetchDetailNotFoundEvenWithStats(t *testing.T) {
	idx := &fakeIndex{
		agents: []models.Agent{testAgent(1, "0")},
		stats:  map[string]*models.AgentStats{"agent-42": {TotalFeedback: "3"}},
	}

	got, err := NewAggregator(idx).FetchDetail(context.Background(), "agent-42", 10)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, got)
	require.Len(t, idx.calls, 1, "one combined request")
}

func TestFetchDetailWithoutStats(t *testing.T) {
	agent := testAgent(7, "2")
	agent.RegistrationFile = &models.RegistrationFile{Name: strPtr("Scout"), MCPEndpoint: strPtr("https://mcp.example")}
	idx := &fakeIndex{
		agents:   []models.Agent{agent},
		feedback: map[string][]models.Feedback{agent.ID: {feedbackAt("f1", 100, false)}},
	}

	got, err := NewAggregator(idx).FetchDetail(context.Background(), agent.ID, 10)
	require.NoError(t, err)
	assert.Nil(t, got.Stats)
	assert.Len(t, got.Feedback, 1)

	if diff := cmp.Diff(agent, got.Agent); diff != "" {
		t.Fatalf("agent mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchDetailMergesStats(t *testing.T) {
	agent := testAgent(3, "5")
	stats := &models.AgentStats{
		TotalFeedback:        "5",
		AverageScore:         "91.5",
		ScoreDistribution:    []int{0, 0, 1, 1, 3},
		TotalValidations:     "4",
		CompletedValidations: "3",
		LastActivity:         "1700000500",
	}
	idx := &fakeIndex{
		agents: []models.Agent{agent},
		stats:  map[string]*models.AgentStats{agent.ID: stats},
	}

	got, err := NewAggregator(idx).FetchDetail(context.Background(), agent.ID, 10)
	require.NoError(t, err)
	require.NotNil(t, got.Stats)
	if diff := cmp.Diff(stats, got.Stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
	assert.NotNil(t, got.Feedback)
	assert.Empty(t, got.Feedback)
}

func TestFetchDetailFeedbackFilteredOrderedAndBounded(t *testing.T) {
	agent := testAgent(1, "6")
	rows := []models.Feedback{
		feedbackAt("old", 100, false),
		feedbackAt("revoked", 500, true),
		feedbackAt("newest", 900, false),
		feedbackAt("mid", 300, false),
		feedbackAt("newer", 700, false),
	}
	idx := &fakeIndex{
		agents:   []models.Agent{agent},
		feedback: map[string][]models.Feedback{agent.ID: rows},
	}

	got, err := NewAggregator(idx).FetchDetail(context.Background(), agent.ID, 3)
	require.NoError(t, err)

	var ids []string
	for _, fb := range got.Feedback {
		assert.False(t, fb.IsRevoked)
		ids = append(ids, fb.ID)
	}
	assert.Equal(t, []string{"newest", "newer", "mid"}, ids)

	q := idx.calls[0]
	assert.Equal(t, agent.ID, q.Vars["id"])
	assert.Equal(t, 3, q.Vars["feedbackFirst"])
}

func TestRecentFeedbackGuardsIndexOutput(t *testing.T) {
	rows := []models.Feedback{
		feedbackAt("a", 10, false),
		feedbackAt("b", 30, true),
		feedbackAt("c", 20, false),
		feedbackAt("d", 40, false),
	}

	got := recentFeedback(rows, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, format.ParseCount(got[i-1].CreatedAt), format.ParseCount(got[i].CreatedAt))
	}
}

func TestFetchDetailPassesIDThrough(t *testing.T) {
	idx := &fakeIndex{}
	_, err := NewAggregator(idx).FetchDetail(context.Background(), "11155111%3A7", 10)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "11155111%3A7", idx.calls[0].Vars["id"])
}

func TestFetchDetailInvalidRequest(t *testing.T) {
	idx := &fakeIndex{}
	a := NewAggregator(idx)

	_, err := a.FetchDetail(context.Background(), "", 10)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = a.FetchDetail(context.Background(), "1:1", 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = a.FetchDetail(context.Background(), "1:1", MaxFeedbackLimit+1)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, idx.calls)
}

func TestFetchDetailRemoteFailure(t *testing.T) {
	cause := errors.New("502 bad gateway")
	idx := &fakeIndex{err: cause}

	got, err := NewAggregator(idx).FetchDetail(context.Background(), "1:1", 10)
	assert.Nil(t, got)

	var rqf *RemoteQueryFailure
	require.ErrorAs(t, err, &rqf)
	assert.Equal(t, detailQueryName, rqf.Op)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDetailQueryShape(t *testing.T) {
	assert.Contains(t, detailQuery, "agent(id: $id)")
	assert.Contains(t, detailQuery, "agentStats(id: $id)")
	assert.Contains(t, detailQuery, "feedback(where: { isRevoked: false }, orderBy: createdAt, orderDirection: desc, first: $feedbackFirst)")
	assert.Contains(t, detailQuery, "x402Support: x402support")
}

func TestRegistryUsesConfiguredFeedbackLimit(t *testing.T) {
	agent := testAgent(1, "0")
	idx := &fakeIndex{agents: []models.Agent{agent}}

	r := New(idx, Options{FeedbackLimit: 4})
	_, err := r.GetAgentDetail(context.Background(), agent.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, idx.calls[0].Vars["feedbackFirst"])

	idx.calls = nil
	r = New(idx, Options{})
	_, err = r.GetAgentDetail(context.Background(), agent.ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultFeedbackLimit, idx.calls[0].Vars["feedbackFirst"])

	page, err := r.ListAgents(context.Background(), ListRequest{Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}
