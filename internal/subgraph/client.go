// Package subgraph is the GraphQL transport to the remote agent index.
package subgraph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/machinebox/graphql"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/eldtechnologies/agentindex/internal/metrics"
)

// Query is one GraphQL document plus its variables.
// Name is the operation name used for metrics, spans and logs.
type Query struct {
	Name string
	Text string
	Vars map[string]any
}

// Runner executes a query and decodes its data object into out.
type Runner interface {
	Run(ctx context.Context, q Query, out any) error
}

// Config holds the connection settings for the subgraph endpoint.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("subgraph returned status %d", e.Code)
}

// Client talks to a single subgraph endpoint.
type Client struct {
	gql      *graphql.Client
	endpoint string
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewClient creates a client bound to cfg.Endpoint. A nil tracer disables spans.
func NewClient(cfg Config, logger zerolog.Logger, tracer trace.Tracer) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("subgraph endpoint is required")
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("subgraph")
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &headerTransport{
			base:   http.DefaultTransport,
			apiKey: cfg.APIKey,
		},
	}

	gql := graphql.NewClient(cfg.Endpoint, graphql.WithHTTPClient(httpClient))
	gql.Log = func(s string) {
		logger.Trace().Str("component", "graphql").Msg(s)
	}

	return &Client{
		gql:      gql,
		endpoint: cfg.Endpoint,
		logger:   logger.With().Str("component", "subgraph").Logger(),
		tracer:   tracer,
	}, nil
}

// Run executes q in a single HTTP round trip.
func (c *Client) Run(ctx context.Context, q Query, out any) error {
	ctx, span := c.tracer.Start(ctx, "subgraph."+q.Name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("graphql.operation.name", q.Name)),
	)
	defer span.End()

	req := graphql.NewRequest(q.Text)
	for k, v := range q.Vars {
		req.Var(k, v)
	}

	start := time.Now()
	err := c.gql.Run(ctx, req, out)
	latency := time.Since(start)
	metrics.SubgraphLatency.WithLabelValues(q.Name).Observe(latency.Seconds())

	if err != nil {
		metrics.SubgraphErrors.WithLabelValues(q.Name).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn().
			Err(err).
			Str("operation", q.Name).
			Dur("latency", latency).
			Msg("subgraph query failed")
		return err
	}

	c.logger.Debug().
		Str("operation", q.Name).
		Dur("latency", latency).
		Msg("subgraph query completed")
	return nil
}

const pingQuery = `query Ping { _meta { block { number } } }`

// Ping checks that the endpoint answers and reports the indexed block number.
func (c *Client) Ping(ctx context.Context) (int64, error) {
	var resp struct {
		Meta *struct {
			Block struct {
				Number int64 `json:"number"`
			} `json:"block"`
		} `json:"_meta"`
	}
	if err := c.Run(ctx, Query{Name: "Ping", Text: pingQuery}, &resp); err != nil {
		return 0, err
	}
	if resp.Meta == nil {
		return 0, errors.New("subgraph returned no _meta")
	}
	return resp.Meta.Block.Number, nil
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// headerTransport adds auth and request id headers and turns non-2xx
// responses into errors before the GraphQL decoder sees them.
type headerTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	reqID := chimw.GetReqID(req.Context())
	if reqID == "" {
		reqID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", reqID)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return resp, nil
}
