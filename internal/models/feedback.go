package models

// Feedback represents a review event submitted for an agent.
type Feedback struct {
	ID            string             `json:"id"`
	Value         string             `json:"value"`
	Tag1          *string            `json:"tag1"`
	Tag2          *string            `json:"tag2"`
	ClientAddress string             `json:"clientAddress"`
	CreatedAt     string             `json:"createdAt"`
	IsRevoked     bool               `json:"isRevoked"`
	FeedbackFile  *FeedbackFile      `json:"feedbackFile"`
	Responses     []FeedbackResponse `json:"responses"`
}

// FeedbackFile is the off-chain body attached to a feedback event.
type FeedbackFile struct {
	Text         *string  `json:"text"`
	MCPTool      *string  `json:"mcpTool"`
	MCPPrompt    *string  `json:"mcpPrompt"`
	MCPResource  *string  `json:"mcpResource"`
	A2ASkills    []string `json:"a2aSkills"`
	A2AContextID *string  `json:"a2aContextId"`
	A2ATaskID    *string  `json:"a2aTaskId"`
}

// FeedbackResponse is an agent-side reply to a feedback event.
type FeedbackResponse struct {
	ID          string  `json:"id"`
	Responder   string  `json:"responder"`
	ResponseURI *string `json:"responseUri"`
	CreatedAt   string  `json:"createdAt"`
}
