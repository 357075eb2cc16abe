// Package format derives display values from the string-encoded fields the
// subgraph returns. Every function here is total: bad input degrades to a
// fallback value instead of an error.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/eldtechnologies/agentindex/internal/models"
)

const (
	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Jan 2, 2006, 03:04 PM"
)

// Protocol labels.
const (
	ProtocolMCP    = "MCP"
	ProtocolA2A    = "A2A"
	ProtocolCustom = "CUSTOM"
)

// ParseCount parses a decimal count. Anything unparsable is 0.
func ParseCount(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseScore parses a decimal score. Anything unparsable, NaN or infinite is 0.
func ParseScore(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// DisplayName returns the registration name, or "Agent #<n>" built from the
// numeric suffix of agentId when the name is missing or just echoes the id.
func DisplayName(a models.Agent) string {
	if rf := a.RegistrationFile; rf != nil && rf.Name != nil {
		if name := *rf.Name; name != "" && name != a.ID {
			return name
		}
	}
	ordinal := a.AgentID
	if _, suffix, ok := strings.Cut(a.AgentID, ":"); ok && suffix != "" {
		ordinal = suffix
	}
	return "Agent #" + ordinal
}

// Protocols lists the protocol labels an agent exposes, CUSTOM when none.
func Protocols(a models.Agent) []string {
	var out []string
	if a.RegistrationFile.HasMCP() {
		out = append(out, ProtocolMCP)
	}
	if a.RegistrationFile.HasA2A() {
		out = append(out, ProtocolA2A)
	}
	if len(out) == 0 {
		out = append(out, ProtocolCustom)
	}
	return out
}

// TruncateAddress shortens an address to 0x1234...abcd.
func TruncateAddress(address string) string {
	if address == "" {
		return "-"
	}
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// unix converts a Unix-seconds decimal string to a UTC time.
func unix(ts string) time.Time {
	return time.Unix(ParseCount(ts), 0).UTC()
}

// FormatDate formats a Unix-seconds timestamp as "Jan 2, 2006".
func FormatDate(ts string) string {
	return unix(ts).Format(dateLayout)
}

// FormatDateTime formats a Unix-seconds timestamp with the time of day.
func FormatDateTime(ts string) string {
	return unix(ts).Format(dateTimeLayout)
}

// RelativeTime formats ts relative to the current wall clock.
func RelativeTime(ts string) string {
	return RelativeTimeAt(ts, time.Now())
}

// RelativeTimeAt formats ts relative to now: minutes under an hour, hours
// under a day, days under thirty days, otherwise the absolute date.
func RelativeTimeAt(ts string, now time.Time) string {
	diff := now.Sub(unix(ts))

	switch {
	case diff < time.Hour:
		return strconv.Itoa(int(diff/time.Minute)) + " minutes ago"
	case diff < 24*time.Hour:
		return strconv.Itoa(int(diff/time.Hour)) + " hours ago"
	case diff < 30*24*time.Hour:
		return strconv.Itoa(int(diff/(24*time.Hour))) + " days ago"
	default:
		return FormatDate(ts)
	}
}
