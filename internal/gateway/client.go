package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"smartrecruiter/internal/config"
	"smartrecruiter/internal/model"
)

// AuthGateway exchanges credentials for a session via the external API.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Register(ctx context.Context, fullName, email, password, confirmPassword string) error
}

// AnalysisGateway submits CVs for analysis and retrieves analysis records.
// Payloads come back raw; shape normalization is the result package's job.
type AnalysisGateway interface {
	UploadCV(ctx context.Context, token string, cv io.Reader, filename, appliedJob, userID string) (json.RawMessage, error)
	FetchAnalysis(ctx context.Context, token, id string) (json.RawMessage, error)
	FetchLatest(ctx context.Context, token string) (json.RawMessage, error)
}

// Client talks to the external CV analysis backend over HTTP. Outbound calls
// are traced (otelhttp transport), bounded by the configured timeout, and
// guarded by a circuit breaker so a dead backend fails fast instead of tying
// up request handlers for the full timeout.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

var _ AuthGateway = (*Client)(nil)
var _ AnalysisGateway = (*Client)(nil)

// NewClient constructs a backend client from config.
func NewClient(cfg config.BackendConfig) *Client {
	settings := gobreaker.Settings{
		Name:    "analysis-backend",
		Timeout: time.Duration(cfg.BreakerTimeoutSec) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFails
		},
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
	}
}

// do sends the request through the circuit breaker. Only transport failures
// count against the breaker; an HTTP error status is a healthy backend.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	return c.breaker.Execute(func() (*http.Response, error) {
		return c.http.Do(req)
	})
}

// postJSON issues a JSON POST to path and returns the response.
func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(raw)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// get issues an authorized GET to path.
func (c *Client) get(ctx context.Context, path, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do(req)
}
