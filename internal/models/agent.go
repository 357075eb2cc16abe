package models

// Agent represents a registered on-chain agent as indexed by the subgraph.
// Timestamps and counters are Unix seconds and BigInts encoded as decimal strings.
type Agent struct {
	ID               string            `json:"id"`
	AgentID          string            `json:"agentId"` // "<chain>:<number>"
	ChainID          string            `json:"chainId"`
	Owner            string            `json:"owner"`
	Operators        []string          `json:"operators"`
	AgentURI         *string           `json:"agentURI"`
	CreatedAt        string            `json:"createdAt"`
	UpdatedAt        string            `json:"updatedAt"`
	TotalFeedback    string            `json:"totalFeedback"`
	LastActivity     string            `json:"lastActivity"`
	RegistrationFile *RegistrationFile `json:"registrationFile"`
}

// RegistrationFile is the resolved off-chain descriptor of an agent.
// A nil pointer field means the descriptor did not set it.
type RegistrationFile struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Image           *string  `json:"image"`
	Active          *bool    `json:"active"`
	X402Support     *bool    `json:"x402Support"`
	SupportedTrusts []string `json:"supportedTrusts"`

	// MCP
	MCPEndpoint  *string  `json:"mcpEndpoint"`
	MCPVersion   *string  `json:"mcpVersion"`
	MCPTools     []string `json:"mcpTools"`
	MCPPrompts   []string `json:"mcpPrompts"`
	MCPResources []string `json:"mcpResources"`

	// A2A
	A2AEndpoint *string  `json:"a2aEndpoint"`
	A2AVersion  *string  `json:"a2aVersion"`
	A2ASkills   []string `json:"a2aSkills"`

	ENS *string `json:"ens"`
	DID *string `json:"did"`
}

// HasMCP reports whether the descriptor advertises a usable MCP endpoint.
// An empty endpoint counts as absent for display, although the index's
// protocol filter (mcpEndpoint_not: null) still returns such agents.
func (f *RegistrationFile) HasMCP() bool {
	return f != nil && f.MCPEndpoint != nil && *f.MCPEndpoint != ""
}

// HasA2A reports whether the descriptor advertises a usable A2A endpoint.
// Empty endpoints are treated as in HasMCP.
func (f *RegistrationFile) HasA2A() bool {
	return f != nil && f.A2AEndpoint != nil && *f.A2AEndpoint != ""
}
