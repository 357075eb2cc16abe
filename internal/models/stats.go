package models

// AgentStats is the aggregate the subgraph maintains per agent.
type AgentStats struct {
	TotalFeedback        string `json:"totalFeedback"`
	AverageScore         string `json:"averageScore"`
	ScoreDistribution    []int  `json:"scoreDistribution"`
	TotalValidations     string `json:"totalValidations"`
	CompletedValidations string `json:"completedValidations"`
	LastActivity         string `json:"lastActivity"`
}

// AgentWithDetails is the detail view: the agent, its most recent
// non-revoked feedback and its stats. Stats is nil until the index computes them.
type AgentWithDetails struct {
	Agent
	Feedback []Feedback  `json:"feedback"`
	Stats    *AgentStats `json:"stats"`
}
