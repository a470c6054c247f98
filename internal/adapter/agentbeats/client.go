// Package agentbeats provides an HTTP client for the agentbeats.dev agent catalog.
package agentbeats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Strob0t/scenariogen/internal/port/catalog"
	"github.com/Strob0t/scenariogen/internal/resilience"
)

// DefaultBaseURL is the public catalog endpoint.
const DefaultBaseURL = "https://agentbeats.dev/api/agents"

// DefaultTimeout bounds every catalog request.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Client implements catalog.Lookup against the agentbeats REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

var _ catalog.Lookup = (*Client)(nil)

// NewClient creates a catalog client. A non-positive timeout selects DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing calls. Not-found and
// malformed responses do not count as dependency failures.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	b.IsPermanent = func(err error) bool {
		return errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrInvalid)
	}
	c.breaker = b
}

// Lookup fetches the catalog entry for id.
func (c *Client) Lookup(ctx context.Context, id string) (catalog.Agent, error) {
	var agent catalog.Agent
	call := func() error {
		data, err := c.get(ctx, id)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &agent); err != nil {
			return fmt.Errorf("%w: agent %s: %v", catalog.ErrInvalid, id, err)
		}
		if agent.DockerImage == "" {
			return fmt.Errorf("%w: agent %s: missing docker_image", catalog.ErrInvalid, id)
		}
		if agent.ID == "" {
			agent.ID = id
		}
		return nil
	}

	if c.breaker == nil {
		return agent, call()
	}
	err := c.breaker.Execute(call)
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return agent, fmt.Errorf("%w: %v", catalog.ErrTransport, err)
	}
	return agent, err
}

func (c *Client) get(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(id), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", catalog.ErrTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: agentbeats API error %d: %s", catalog.ErrTransport, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}
