// Package operator models the human-in-the-loop confirmation step used when an
// automated login cannot be classified (CAPTCHA, two-factor prompts).
package operator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/azizemirhan/hubcenter/internal/apperr"
)

// ErrRejected is returned when the operator declines a confirmation.
var ErrRejected = errors.New("operator rejected confirmation")

// ErrUnknownRequest is returned when resolving a request that is not pending.
var ErrUnknownRequest = errors.New("no such pending confirmation")

// Operator suspends the caller until a human confirms the prompt.
type Operator interface {
	Confirm(ctx context.Context, prompt string) error
}

// Console asks on a terminal and waits for Enter. It has no timeout of its own.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole builds a console operator on the given streams.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

func (c *Console) Confirm(ctx context.Context, prompt string) error {
	fmt.Fprintf(c.out, "\n%s\nPress Enter to continue...\n", prompt)

	done := make(chan error, 1)
	go func() {
		_, err := c.in.ReadString('\n')
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read operator input: %w", err)
		}
		if errors.Is(err, io.EOF) {
			return apperr.ErrOperatorUnavailable
		}
		return nil
	}
}

// Unattended never waits; every confirmation fails immediately.
type Unattended struct{}

func (Unattended) Confirm(context.Context, string) error {
	return apperr.ErrOperatorUnavailable
}

// Request is a confirmation waiting for a remote decision.
type Request struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

// Queue holds confirmations until they are resolved through the control server.
type Queue struct {
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	pending map[string]*waiter
	order   []string
}

type waiter struct {
	req      Request
	decision chan bool
}

// NewQueue builds a queue whose confirmations expire after timeout (0 waits forever).
func NewQueue(timeout time.Duration) *Queue {
	return &Queue{
		timeout: timeout,
		now:     time.Now,
		pending: map[string]*waiter{},
	}
}

func (q *Queue) Confirm(ctx context.Context, prompt string) error {
	w := &waiter{
		req:      Request{ID: uuid.NewString(), Prompt: prompt, CreatedAt: q.now()},
		decision: make(chan bool, 1),
	}
	q.mu.Lock()
	q.pending[w.req.ID] = w
	q.order = append(q.order, w.req.ID)
	q.mu.Unlock()
	defer q.remove(w.req.ID)

	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	select {
	case approved := <-w.decision:
		if !approved {
			return ErrRejected
		}
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: timed out after %s", apperr.ErrOperatorUnavailable, q.timeout)
		}
		return ctx.Err()
	}
}

// Pending lists unresolved confirmations, oldest first.
func (q *Queue) Pending() []Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Request, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, q.pending[id].req)
	}
	return out
}

// Resolve delivers a decision. An empty id resolves the oldest pending request.
func (q *Queue) Resolve(id string, approve bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if id == "" {
		if len(q.order) == 0 {
			return ErrUnknownRequest
		}
		id = q.order[0]
	}
	w, ok := q.pending[id]
	if !ok {
		return ErrUnknownRequest
	}
	select {
	case w.decision <- approve:
	default:
	}
	return nil
}

func (q *Queue) remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, id)
	for i, pendingID := range q.order {
		if pendingID == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}
