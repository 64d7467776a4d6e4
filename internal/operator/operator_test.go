package operator

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/azizemirhan/hubcenter/internal/apperr"
)

func TestConsoleConfirm(t *testing.T) {
	out := &bytes.Buffer{}
	op := NewConsole(strings.NewReader("\n"), out)
	if err := op.Confirm(context.Background(), "Complete the CAPTCHA"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Complete the CAPTCHA") {
		t.Fatalf("expected prompt to be printed, got %q", out.String())
	}
}

func TestConsoleConfirmClosedInput(t *testing.T) {
	op := NewConsole(strings.NewReader(""), &bytes.Buffer{})
	if err := op.Confirm(context.Background(), "x"); !errors.Is(err, apperr.ErrOperatorUnavailable) {
		t.Fatalf("expected operator unavailable, got %v", err)
	}
}

func TestUnattended(t *testing.T) {
	if err := (Unattended{}).Confirm(context.Background(), "x"); !errors.Is(err, apperr.ErrOperatorUnavailable) {
		t.Fatalf("expected operator unavailable, got %v", err)
	}
}

func TestQueueResolve(t *testing.T) {
	q := NewQueue(time.Second)
	result := make(chan error, 1)
	go func() { result <- q.Confirm(context.Background(), "login needs review") }()

	var pending []Request
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if pending = q.Pending(); len(pending) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if len(pending) != 1 || pending[0].Prompt != "login needs review" {
		t.Fatalf("expected one pending request, got %+v", pending)
	}
	if err := q.Resolve(pending[0].ID, true); err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if err := <-result; err != nil {
		t.Fatalf("expected approval, got %v", err)
	}
	if len(q.Pending()) != 0 {
		t.Fatalf("expected queue to be drained")
	}
}

func TestQueueRejectAndTimeout(t *testing.T) {
	q := NewQueue(20 * time.Millisecond)
	if err := q.Confirm(context.Background(), "x"); !errors.Is(err, apperr.ErrOperatorUnavailable) {
		t.Fatalf("expected timeout to map to operator unavailable, got %v", err)
	}

	q = NewQueue(0)
	result := make(chan error, 1)
	go func() { result <- q.Confirm(context.Background(), "x") }()
	for len(q.Pending()) == 0 {
		time.Sleep(time.Millisecond)
	}
	if err := q.Resolve("", false); err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if err := <-result; !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if err := q.Resolve("missing", true); !errors.Is(err, ErrUnknownRequest) {
		t.Fatalf("expected unknown request error, got %v", err)
	}
}
