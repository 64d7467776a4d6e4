// Package httpclient runs outbound HTTP calls through a failsafe retry policy.
package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// RetryConfig configures the retry policy.
type RetryConfig struct {
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	ShouldRetry func(resp *http.Response, err error) bool
}

// DefaultRetryConfig retries twice with a short exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  2,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		ShouldRetry: DefaultShouldRetry,
	}
}

// DefaultShouldRetry retries on network errors, server errors (5xx) and rate limits (429).
func DefaultShouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return true
	}
	switch resp.StatusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

func normalize(cfg RetryConfig) RetryConfig {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = DefaultShouldRetry
	}
	return cfg
}

// Doer is the subset of *http.Client the executor needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Executor sends requests through a retry policy.
type Executor struct {
	client   Doer
	executor failsafe.Executor[*http.Response]
}

// NewExecutor wraps client with the retry policy described by cfg.
//
//nolint:bodyclose // *http.Response is a type parameter here, not a live response
func NewExecutor(client Doer, cfg RetryConfig) *Executor {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	cfg = normalize(cfg)
	policy := retrypolicy.NewBuilder[*http.Response]().
		WithBackoff(cfg.BaseDelay, cfg.MaxDelay).
		WithMaxRetries(cfg.MaxRetries).
		WithJitterFactor(0.1).
		HandleIf(cfg.ShouldRetry).
		ReturnLastFailure().
		Build()
	return &Executor{client: client, executor: failsafe.With(policy)}
}

// Do builds a fresh request for every attempt with newRequest and sends it.
// When retries are exhausted the last response or error is returned.
func (e *Executor) Do(ctx context.Context, newRequest func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	var previous *http.Response
	return e.executor.WithContext(ctx).Get(func() (*http.Response, error) {
		if previous != nil && previous.Body != nil {
			previous.Body.Close()
		}
		req, err := newRequest(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := e.client.Do(req)
		previous = resp
		return resp, err
	})
}
