// Package api is the boundary to the Podkrepi REST API. Every call returns a
// Result; raw HTTP and error payload shapes never leave this package.
package api

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
	"time"
)

const maxBodyBytes = 4 << 20

var (
	// ErrUnauthorized marks a 401 from the API; the session token is missing or expired.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrMalformedResponse marks a payload that is not the JSON shape expected.
	ErrMalformedResponse = errors.New("api: malformed response")
)

// TokenSource supplies the bearer token of the current session. Implementations
// must not mutate the session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client issues JSON requests against the API base URL.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

// NewClient constructs a Client. A nil httpClient gets a client with the given timeout.
func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration, tokens TokenSource, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: u, http: httpClient, tokens: tokens, logger: logger}, nil
}

// List fetches every record of the resource.
func (c *Client) List(ctx context.Context, e Endpoint) Result {
	return c.do(ctx, http.MethodGet, e.ListPath, nil)
}

// Get fetches a single record.
func (c *Client) Get(ctx context.Context, e Endpoint, id string) Result {
	return c.do(ctx, http.MethodGet, e.expand(e.ViewPath, id), nil)
}

// Create posts a new record.
func (c *Client) Create(ctx context.Context, e Endpoint, payload any) Result {
	return c.do(ctx, http.MethodPost, e.CreatePath, payload)
}

// Edit updates an existing record.
func (c *Client) Edit(ctx context.Context, e Endpoint, id string, payload any) Result {
	method := e.EditMethod
	if method == "" {
		method = http.MethodPatch
	}
	return c.do(ctx, method, e.expand(e.EditPath, id), payload)
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, e Endpoint, id string) Result {
	return c.do(ctx, http.MethodDelete, e.expand(e.DeletePath, id), nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) Result {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Failed(0, fmt.Errorf("api: encode payload: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return Failed(0, fmt.Errorf("api: build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return Failed(0, fmt.Errorf("api: session token: %w", err))
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Failed(0, fmt.Errorf("api: %s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Failed(resp.StatusCode, fmt.Errorf("api: read body: %w", err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return decodeSuccess(resp.StatusCode, raw)
	}

	result := decodeFailure(resp.StatusCode, raw)
	if result.Kind == KindTransportFailed {
		c.logger.Warn("api request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
	}
	return result
}

func decodeSuccess(status int, raw []byte) Result {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Result{Kind: KindOK, Status: status}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return Failed(status, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	switch v := payload.(type) {
	case map[string]any:
		return Result{Kind: KindOK, Status: status, Record: Record(v)}
	case []any:
		records := make([]Record, 0, len(v))
		for _, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return Failed(status, fmt.Errorf("%w: list item is %T", ErrMalformedResponse, item))
			}
			records = append(records, Record(obj))
		}
		return Result{Kind: KindOK, Status: status, Records: records}
	case nil:
		return Result{Kind: KindOK, Status: status}
	default:
		return Failed(status, fmt.Errorf("%w: unexpected %T", ErrMalformedResponse, payload))
	}
}

type errorEnvelope struct {
	Message json.RawMessage `json:"message"`
}

func decodeFailure(status int, raw []byte) Result {
	if status == http.StatusUnauthorized {
		return Failed(status, ErrUnauthorized)
	}
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Message) > 0 && env.Message[0] == '[' {
		var violations []Violation
		if err := json.Unmarshal(env.Message, &violations); err == nil && validViolations(violations) {
			return Result{Kind: KindValidationFailed, Status: status, Violations: violations}
		}
	}
	return Failed(status, fmt.Errorf("api: status %d", status))
}

func validViolations(vs []Violation) bool {
	if len(vs) == 0 {
		return false
	}
	for _, v := range vs {
		if v.Property == "" {
			return false
		}
	}
	return true
}
