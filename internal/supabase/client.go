// Package supabase talks to the hosted Supabase project: GoTrue for auth and
// PostgREST for the sherk_stakes and users tables.
package supabase

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

	"sherk_portal/internal/logger"
	"sherk_portal/internal/repository"

	"github.com/tidwall/gjson"
)

const maxBodySize = 4 << 20

// Client is a thin HTTP client bound to one project URL and anon key.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	retries    int
	backoff    time.Duration
	log        *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetries sets how many times an idempotent request is repeated after a
// transient failure.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

func NewClient(baseURL, anonKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retries:    2,
		backoff:    200 * time.Millisecond,
		log:        logger.With("component", "supabase"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TokenSource yields the bearer for a request; "" means use the anon key.
type TokenSource func() string

// StaticToken always returns key (e.g. the service-role key for exports).
func StaticToken(key string) TokenSource {
	return func() string { return key }
}

// APIError is a non-2xx answer from GoTrue or PostgREST.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %s (%s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("supabase: %s (status %d)", e.Message, e.Status)
}

// Ping checks that the project answers, via the auth health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/auth/v1/health", idempotent: true})
	return err
}

type request struct {
	method     string
	path       string
	query      url.Values
	body       any
	token      string
	prefer     string
	idempotent bool
}

// do executes req, retrying idempotent requests on network errors and
// 502/503/504 with linear backoff. Network failures wrap repository.ErrNetwork.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	var payload []byte
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		payload = b
	}

	attempts := 1
	if req.idempotent {
		attempts += c.retries
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			wait := c.backoff * time.Duration(i)
			c.log.Debug("retrying request", "method", req.method, "path", req.path, "attempt", i+1, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		body, status, err := c.once(ctx, req, payload)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %s %s: %v", repository.ErrNetwork, req.method, req.path, err)
			continue
		}
		if status >= 200 && status < 300 {
			return body, nil
		}
		apiErr := parseAPIError(status, body)
		if isGatewayStatus(status) {
			lastErr = fmt.Errorf("%w: %v", repository.ErrNetwork, apiErr)
			continue
		}
		return nil, apiErr
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, req request, payload []byte) ([]byte, int, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, 0, err
	}

	bearer := req.token
	if bearer == "" {
		bearer = c.anonKey
	}
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.prefer != "" {
		httpReq.Header.Set("Prefer", req.prefer)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return b, resp.StatusCode, nil
}

func isGatewayStatus(status int) bool {
	return status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout
}

// parseAPIError reads the various error shapes GoTrue and PostgREST use.
func parseAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	if !gjson.ValidBytes(body) {
		e.Message = strings.TrimSpace(string(body))
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
		return e
	}

	res := gjson.ParseBytes(body)
	for _, key := range []string{"msg", "message", "error_description", "error"} {
		if v := res.Get(key); v.Exists() && v.Type == gjson.String && v.String() != "" {
			e.Message = v.String()
			break
		}
	}
	for _, key := range []string{"error_code", "code"} {
		if v := res.Get(key); v.Exists() && v.String() != "" {
			e.Code = v.String()
			break
		}
	}
	if e.Code == "" {
		// GoTrue's OAuth-style errors carry the code in "error".
		if v := res.Get("error"); v.Type == gjson.String && e.Message != v.String() {
			e.Code = v.String()
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
