package format

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/eldtechnologies/agentindex/internal/models"
)

func strPtr(s string) *string { return &s }

func TestParseCount(t *testing.T) {
	cases := map[string]int64{
		"42":  42,
		" 7 ": 7,
		"":    0,
		"abc": 0,
		"1.5": 0,
		"-3":  -3,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseCount(in), "input %q", in)
	}
	assert.Zero(t, ParseCount("99999999999999999999999"))
}

func TestParseScore(t *testing.T) {
	assert.Equal(t, 87.5, ParseScore("87.5"))
	assert.Equal(t, 0.0, ParseScore(""))
	assert.Equal(t, 0.0, ParseScore("n/a"))
	assert.Equal(t, 0.0, ParseScore("NaN"))
	assert.Equal(t, 0.0, ParseScore("Inf"))
}

func TestParseNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		n := ParseCount(s)
		if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil && n != 0 {
			t.Fatalf("ParseCount(%q) = %d, want 0", s, n)
		}
		_ = ParseScore(s)
	})
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		agent models.Agent
		want  string
	}{
		{
			name:  "registration name",
			agent: models.Agent{ID: "11155111:7", AgentID: "11155111:7", RegistrationFile: &models.RegistrationFile{Name: strPtr("Oracle")}},
			want:  "Oracle",
		},
		{
			name:  "no registration file",
			agent: models.Agent{ID: "11155111:7", AgentID: "11155111:7"},
			want:  "Agent #7",
		},
		{
			name:  "empty name",
			agent: models.Agent{ID: "x", AgentID: "1:12", RegistrationFile: &models.RegistrationFile{Name: strPtr("")}},
			want:  "Agent #12",
		},
		{
			name:  "name echoes id",
			agent: models.Agent{ID: "1:3", AgentID: "1:3", RegistrationFile: &models.RegistrationFile{Name: strPtr("1:3")}},
			want:  "Agent #3",
		},
		{
			name:  "agentId without chain",
			agent: models.Agent{ID: "x", AgentID: "55"},
			want:  "Agent #55",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.agent))
		})
	}
}

func TestProtocols(t *testing.T) {
	assert.Equal(t, []string{ProtocolCustom}, Protocols(models.Agent{}))
	assert.Equal(t, []string{ProtocolCustom}, Protocols(models.Agent{RegistrationFile: &models.RegistrationFile{MCPEndpoint: strPtr("")}}))

	both := models.Agent{RegistrationFile: &models.RegistrationFile{
		MCPEndpoint: strPtr("https://mcp.example"),
		A2AEndpoint: strPtr("https://a2a.example"),
	}}
	assert.Equal(t, []string{ProtocolMCP, ProtocolA2A}, Protocols(both))
}

func TestTruncateAddress(t *testing.T) {
	assert.Equal(t, "-", TruncateAddress(""))
	assert.Equal(t, "0xabc", TruncateAddress("0xabc"))
	assert.Equal(t, "0x1234...cdef", TruncateAddress("0x1234567890abcdef1234567890abcdef"))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Jan 1, 1970", FormatDate("garbage"))
	assert.Equal(t, "Nov 14, 2023", FormatDate("1700000000"))
	assert.Equal(t, "Nov 14, 2023, 10:13 PM", FormatDateTime("1700000000"))
}

func TestRelativeTimeAtBuckets(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	ago := func(d time.Duration) string {
		return strconv.FormatInt(now.Add(-d).Unix(), 10)
	}

	assert.Equal(t, "0 minutes ago", RelativeTimeAt(ago(0), now))
	assert.Equal(t, "59 minutes ago", RelativeTimeAt(ago(59*time.Minute+59*time.Second), now))
	assert.Equal(t, "1 hours ago", RelativeTimeAt(ago(time.Hour), now))
	assert.Equal(t, "23 hours ago", RelativeTimeAt(ago(24*time.Hour-time.Second), now))
	assert.Equal(t, "1 days ago", RelativeTimeAt(ago(24*time.Hour), now))
	assert.Equal(t, "29 days ago", RelativeTimeAt(ago(30*24*time.Hour-time.Second), now))

	old := ago(30 * 24 * time.Hour)
	assert.Equal(t, FormatDate(old), RelativeTimeAt(old, now))
}
