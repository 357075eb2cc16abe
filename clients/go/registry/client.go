// Package registry provides a client for the agentindex HTTP API.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/eldtechnologies/agentindex/internal/models"
)

// DefaultBaseURL is used when NewClient is given an empty base URL.
const DefaultBaseURL = "http://localhost:8080"

// ErrNotFound is returned by GetAgent when the agent does not exist.
var ErrNotFound = errors.New("agent not found")

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("agentindex error %d: %s", e.StatusCode, e.Message)
}

// Client is an agentindex API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListOptions selects a page of agents. Zero values use the server defaults.
type ListOptions struct {
	Page     int
	PageSize int
	Query    string // non-empty switches to search
	Sort     string // "<key>:<asc|desc>"
	Protocol string // "", "mcp" or "a2a"
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(o.PageSize))
	}
	if o.Query != "" {
		v.Set("q", o.Query)
	}
	if o.Sort != "" {
		v.Set("sort", o.Sort)
	}
	if o.Protocol != "" {
		v.Set("protocol", o.Protocol)
	}
	return v
}

// ListResponse is one page of agents.
type ListResponse struct {
	Success  bool           `json:"success"`
	Items    []models.Agent `json:"items"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
	HasMore  bool           `json:"hasMore"`
}

// ListAgents lists or searches agents.
func (c *Client) ListAgents(ctx context.Context, opts ListOptions) (*ListResponse, error) {
	path := "/api/agents"
	if q := opts.values().Encode(); q != "" {
		path += "?" + q
	}

	var resp ListResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAgent fetches the detail view of one agent.
func (c *Client) GetAgent(ctx context.Context, id string) (*models.AgentWithDetails, error) {
	var resp struct {
		Success bool                     `json:"success"`
		Agent   *models.AgentWithDetails `json:"agent"`
	}
	err := c.get(ctx, "/api/agents/"+url.PathEscape(id), &resp)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if resp.Agent == nil {
		return nil, ErrNotFound
	}
	return resp.Agent, nil
}

// Check is the result of one health probe.
type Check struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the server health report.
type HealthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Timestamp string           `json:"timestamp"`
}

// Health returns the server health report. A degraded server answers
// 503 with a report, which is returned without an error.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	err := c.get(ctx, "/health", &resp)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable && resp.Status != "" {
		return &resp, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// get performs a GET request and decodes the JSON body into out. On a
// non-2xx status the body is still decoded into out when possible.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &errResp)
		_ = json.Unmarshal(body, out)
		msg := errResp.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return json.Unmarshal(body, out)
}
