// Package browser exposes the automated browser as a small capability interface.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrElementNotFound is returned when no element matched a selector in time.
var ErrElementNotFound = errors.New("element not found")

// WaitUntil names the load event a navigation waits for.
type WaitUntil string

const (
	WaitNetworkIdle      WaitUntil = "networkidle"
	WaitDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitLoad             WaitUntil = "load"
)

// GotoOptions tunes a navigation.
type GotoOptions struct {
	WaitUntil WaitUntil
	Timeout   time.Duration
}

// Page is the browser capability the pipeline relies on: navigate, read rendered
// content and interact with form controls.
type Page interface {
	// Goto navigates and returns the main response status, or 0 when there was none.
	Goto(ctx context.Context, url string, opts GotoOptions) (int, error)
	URL() string
	Title() (string, error)
	Content() (string, error)
	BodyText() (string, error)
	// Locate waits up to timeout for the first element matching selector.
	Locate(selector string, timeout time.Duration) (Element, error)
	// Exists reports whether selector currently matches anything.
	Exists(selector string) (bool, error)
}

// Element is an interactive DOM element.
type Element interface {
	Fill(value string) error
	Click() error
	Press(key string) error
}

// Session owns one browser and its single page.
type Session interface {
	Page() Page
	Close() error
}

// Launcher starts a browser session.
type Launcher func(ctx context.Context) (Session, error)

// Wait sleeps for d or until ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
