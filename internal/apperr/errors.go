// Package apperr defines the error taxonomy shared by the pipeline stages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNoContent reports that no usable page content could be retrieved.
	ErrNoContent = errors.New("no usable content")
	// ErrOperatorUnavailable reports that no human operator can confirm a suspended step.
	ErrOperatorUnavailable = errors.New("operator confirmation unavailable")
)

// AuthenticationError is returned when the panel or CRM login fails.
type AuthenticationError struct {
	Service string
	Reason  string
	Err     error
}

func (e *AuthenticationError) Error() string {
	msg := fmt.Sprintf("%s authentication failed", e.Service)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// PageLoadError is returned when an expected page element never rendered.
type PageLoadError struct {
	URL string
	Err error
}

func (e *PageLoadError) Error() string {
	return fmt.Sprintf("page load failed for %s: %v", e.URL, e.Err)
}

func (e *PageLoadError) Unwrap() error { return e.Err }

// FetchError is returned when a domain could not be fetched by any path.
type FetchError struct {
	Domain string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Domain, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError is returned when a completion request or its parsing fails.
type ExtractionError struct {
	Stage string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s extraction failed: %v", e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ReconciliationError is returned when a CRM write for a domain fails.
type ReconciliationError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ReconciliationError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("crm %s: %v", e.Op, e.Err)
	case e.Body != "":
		return fmt.Sprintf("crm %s: status %d: %s", e.Op, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("crm %s: status %d", e.Op, e.StatusCode)
	}
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// IsAuthentication reports whether err carries an AuthenticationError.
func IsAuthentication(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}
