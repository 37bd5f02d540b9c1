package stationapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/onair/internal/domain"
)

const (
	apiPrefix        = "/api/v1"
	defaultTimeout   = 30 * time.Second
	defaultPageLimit = 50
	maxRetries       = 3
)

// baseRetryDelay is the first backoff step; tests shorten it.
var baseRetryDelay = 500 * time.Millisecond

// TokenSource supplies the bearer token for authenticated calls
type TokenSource interface {
	Token() string
}

// Client talks to the station backend REST API
type Client struct {
	baseURL    string // scheme://host[:port]/api/v1
	rootURL    string // scheme://host[:port]
	httpClient *http.Client
	logger     *slog.Logger

	mu             sync.RWMutex
	tokens         TokenSource
	onUnauthorized func()
	location       *time.Location
}

// NewClient creates a client for the backend at serverURL. The /api/v1
// prefix is appended when missing.
func NewClient(serverURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	root := strings.TrimSuffix(strings.TrimRight(serverURL, "/"), apiPrefix)
	return &Client{
		baseURL: root + apiPrefix,
		rootURL: root,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// UseSession wires the token source and the handler invoked when an
// authenticated call comes back 401.
func (c *Client) UseSession(tokens TokenSource, onUnauthorized func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = tokens
	c.onUnauthorized = onUnauthorized
}

// BaseURL returns the API root including the version prefix
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) unauthorized() {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// request describes one logical API call
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	public bool // no bearer header, 401 means bad credentials rather than an expired session
}

// idempotent requests are safe to repeat after a 5xx
func (r request) idempotent() bool {
	switch r.method {
	case http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodHead:
		return true
	}
	return false
}

// doRequest performs an HTTP request against the station API.
// Idempotent requests are retried with exponential backoff on 5xx.
func (c *Client) doRequest(ctx context.Context, r request) ([]byte, error) {
	reqURL := c.baseURL + r.path
	if len(r.query) > 0 {
		reqURL = reqURL + "?" + r.query.Encode()
	}

	var payload []byte
	if r.body != nil {
		var err error
		payload, err = json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	requestID := uuid.NewString()
	attempts := 1
	if r.idempotent() {
		attempts = maxRetries + 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(1<<(attempt-1)) // 500ms, 1s, 2s
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "url", reqURL)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, r.method, reqURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if !r.public {
			if tok := c.token(); tok != "" {
				req.Header.Set("Authorization", "Bearer "+tok)
			}
		}

		c.logger.Debug("station request", "method", r.method, "url", reqURL, "attempt", attempt, "requestID", requestID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("station request failed", "error", err, "path", r.path)
			return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized {
			if !r.public {
				c.logger.Warn("session rejected by server", "path", r.path)
				c.unauthorized()
			}
			return nil, domain.ErrAuthFailed
		}

		if resp.StatusCode >= 500 && resp.StatusCode < 600 {
			lastErr = fmt.Errorf("server error: %d - %s", resp.StatusCode, errorMessage(body))
			c.logger.Warn("station server error",
				"status", resp.StatusCode,
				"body", string(body),
				"attempt", attempt,
				"retry", r.idempotent(),
				"path", r.path,
			)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			c.logger.Error("station request rejected", "status", resp.StatusCode, "body", string(body), "path", r.path)
			return nil, &domain.APIError{Status: resp.StatusCode, Message: errorMessage(body)}
		}

		return body, nil
	}

	c.logger.Error("station request failed after retries",
		"error", lastErr,
		"method", r.method,
		"path", r.path,
	)
	return nil, lastErr
}

// getJSON issues a GET and decodes the response into dest
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	body, err := c.doRequest(ctx, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return err
	}
	return decode(body, dest)
}

func decode(body []byte, dest any) error {
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from a body
func errorMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// Ping checks that the backend answers its health endpoint
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rootURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %d", resp.StatusCode)
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return errors.New("health endpoint did not return JSON; is this a station server?")
	}
	if health.Status != "" && health.Status != "ok" {
		return fmt.Errorf("server reports status %q", health.Status)
	}
	return nil
}
