package browser

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := Wait(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("wait did not return promptly")
	}
}

func TestWaitElapses(t *testing.T) {
	if err := Wait(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Wait(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error for zero wait: %v", err)
	}
}

func TestWaitUntilStateMapping(t *testing.T) {
	if waitUntilState(WaitDOMContentLoaded) == waitUntilState(WaitNetworkIdle) {
		t.Fatalf("expected distinct load states")
	}
	if waitUntilState("") != waitUntilState(WaitNetworkIdle) {
		t.Fatalf("expected network idle default")
	}
}
