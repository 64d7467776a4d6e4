// Package crm is a client for the CRM REST API.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/azizemirhan/hubcenter/internal/apperr"
	"github.com/azizemirhan/hubcenter/internal/config"
	"github.com/azizemirhan/hubcenter/internal/dto"
	"github.com/azizemirhan/hubcenter/internal/httpclient"
	"github.com/azizemirhan/hubcenter/internal/logging"
)

const (
	customersPath = "customers/list/"
	hostingsPath  = "domains/hosting/"
	domainsPath   = "domains/list/"
	loginPath     = "auth/login/"

	tokenLeeway  = 30 * time.Second
	maxErrorBody = 512
)

// Client talks to the CRM with a bearer token obtained from Login.
type Client struct {
	baseURL  string
	email    string
	password string
	exec     *httpclient.Executor
	logger   logging.Logger
	now      func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithExecutor replaces the HTTP executor built from the config.
func WithExecutor(exec *httpclient.Executor) Option {
	return func(c *Client) { c.exec = exec }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock overrides time.Now for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient builds a client for cfg.
func NewClient(cfg config.CRMConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		email:    cfg.Email,
		password: cfg.Password,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.exec == nil {
		retry := httpclient.DefaultRetryConfig()
		retry.MaxRetries = cfg.MaxRetries
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.exec = httpclient.NewExecutor(&http.Client{Timeout: timeout}, retry)
	}
	c.logger = logging.OrDiscard(c.logger)
	return c
}

// Login obtains a fresh access token.
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(dto.LoginRequest{Email: c.email, Password: c.password})
	if err != nil {
		return fmt.Errorf("marshal login request: %w", err)
	}
	endpoint := c.endpoint(loginPath)
	resp, err := c.exec.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return &apperr.AuthenticationError{Service: "crm", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &apperr.AuthenticationError{Service: "crm", Reason: fmt.Sprintf("status %d: %s", resp.StatusCode, readBody(resp.Body))}
	}

	var out dto.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return &apperr.AuthenticationError{Service: "crm", Err: fmt.Errorf("decode login response: %w", err)}
	}
	if out.Access == "" {
		return &apperr.AuthenticationError{Service: "crm", Reason: "no access token in response"}
	}

	c.mu.Lock()
	c.token = out.Access
	c.expiresAt = tokenExpiry(out.Access)
	c.mu.Unlock()
	c.logger.Debug("crm login succeeded")
	return nil
}

// tokenExpiry reads the exp claim without verifying the signature; the CRM is
// the only party that needs to trust the token.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func (c *Client) currentToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, expiresAt := c.token, c.expiresAt
	c.mu.Unlock()

	if token != "" && (expiresAt.IsZero() || c.now().Add(tokenLeeway).Before(expiresAt)) {
		return token, nil
	}
	if err := c.Login(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

func (c *Client) invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// do sends an authenticated request. A 401 triggers one re-login.
func (c *Client) do(ctx context.Context, op, method, path string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return &apperr.ReconciliationError{Op: op, Err: fmt.Errorf("marshal payload: %w", err)}
		}
	}

	for attempt := 0; ; attempt++ {
		token, err := c.currentToken(ctx)
		if err != nil {
			return err
		}
		resp, err := c.exec.Do(ctx, func(ctx context.Context) (*http.Request, error) {
			var reader io.Reader
			if body != nil {
				reader = bytes.NewReader(body)
			}
			req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Accept", "application/json")
			if body != nil {
				req.Header.Set("Content-Type", "application/json")
			}
			return req, nil
		})
		if err != nil {
			return &apperr.ReconciliationError{Op: op, Err: err}
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			c.invalidate()
			continue
		}
		err = decodeResponse(resp, op, out)
		resp.Body.Close()
		return err
	}
}

func decodeResponse(resp *http.Response, op string, out any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		return &apperr.ReconciliationError{Op: op, StatusCode: resp.StatusCode, Body: readBody(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &apperr.ReconciliationError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(b))
}

// decodeList accepts a paginated {"results": [...]} envelope or a bare list.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var items []T
		err := json.Unmarshal(raw, &items)
		return items, err
	}
	var page struct {
		Results []T `json:"results"`
	}
	err := json.Unmarshal(raw, &page)
	return page.Results, err
}

func (c *Client) list(ctx context.Context, op, path string, query url.Values) (json.RawMessage, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var raw json.RawMessage
	if err := c.do(ctx, op, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// TestConnection logs in if needed and lists a single customer.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.list(ctx, "test connection", customersPath, url.Values{"limit": {"1"}})
	return err
}
