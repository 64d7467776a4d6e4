// Package ai wraps the text completion backends used for contact extraction.
package ai

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyCompletion is returned when a backend answered without any text.
var ErrEmptyCompletion = errors.New("empty completion")

// Completer turns a prompt into model text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	// Name identifies the backend in logs and reports.
	Name() string
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func (f CompleterFunc) Name() string { return "func" }

// WithTimeout bounds every Complete call of c by d. A non-positive d returns c unchanged.
func WithTimeout(c Completer, d time.Duration) Completer {
	if d <= 0 || c == nil {
		return c
	}
	return &timed{Completer: c, timeout: d}
}

type timed struct {
	Completer
	timeout time.Duration
}

func (t *timed) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Completer.Complete(ctx, prompt)
}
