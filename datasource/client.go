package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"resty.dev/v3"
)

const (
	// DefaultBaseURL is the weatherapi.com v1 endpoint root
	DefaultBaseURL = "https://api.weatherapi.com/v1"

	// APIKeyParam is the query parameter every GET request is augmented with
	APIKeyParam = "key"

	requestIDHeader = "X-Request-Id"
)

// APIError is returned for any non-2xx response
type APIError struct {
	StatusCode int
	Code       int    // weatherapi.com error code, 0 when the body had none
	Message    string // weatherapi.com error message, empty when the body had none
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// IsAuthFailure reports whether err is an API error caused by a missing or rejected key
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// ClientConfig configures the HTTP client
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is a thin wrapper around resty.Client for the weather API.
// It carries one cross-cutting behavior: every GET request receives the API key.
type Client struct {
	rc     *resty.Client
	logger *slog.Logger
}

// NewClient creates a new API client
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	c := &Client{
		rc:     rc,
		logger: logger.With("component", "api-client"),
	}

	rc.AddRequestMiddleware(apiKeyMiddleware(cfg.APIKey))
	rc.AddRequestMiddleware(c.requestIDMiddleware)

	return c
}

// apiKeyMiddleware appends the key to GET requests without touching caller-supplied parameters
func apiKeyMiddleware(apiKey string) resty.RequestMiddleware {
	return func(_ *resty.Client, r *resty.Request) error {
		if r.Method != http.MethodGet {
			return nil
		}
		if r.QueryParams == nil {
			r.QueryParams = url.Values{}
		}
		// A caller that already supplied a key wins
		if _, ok := r.QueryParams[APIKeyParam]; !ok {
			r.QueryParams.Set(APIKeyParam, apiKey)
		}
		return nil
	}
}

// requestIDMiddleware tags each request so log lines can be correlated
func (c *Client) requestIDMiddleware(_ *resty.Client, r *resty.Request) error {
	if r.Header.Get(requestIDHeader) == "" {
		r.SetHeader(requestIDHeader, uuid.NewString())
	}
	c.logger.Debug("outbound request",
		"method", r.Method,
		"path", r.URL,
		"request_id", r.Header.Get(requestIDHeader),
	)
	return nil
}

// Get performs a GET request against path and decodes the JSON body into out.
// Transport failures and non-2xx responses are returned as errors.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	req := c.rc.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}

	// Check for error status code
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		var body struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(resp.Bytes(), &body) == nil {
			apiErr.Code = body.Error.Code
			apiErr.Message = body.Error.Message
		}
		c.logger.Warn("API returned error status",
			"path", path,
			"status", resp.StatusCode(),
			"request_id", resp.Request.Header.Get(requestIDHeader),
		)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Bytes(), out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Close releases the underlying transport resources
func (c *Client) Close() error {
	return c.rc.Close()
}
