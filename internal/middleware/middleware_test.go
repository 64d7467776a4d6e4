package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/azizemirhan/hubcenter/internal/auth"
	"github.com/azizemirhan/hubcenter/internal/config"
	"github.com/azizemirhan/hubcenter/internal/logging"
)

func TestLoggingMiddleware(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("debug", "json")
	logger.SetOutput(buf)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-123")

	err := Logging(logger)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log line, got %q", buf.String())
	}
	if entry["request_id"] != "rid-123" || entry["path"] != "/status" || entry["status"] != float64(200) {
		t.Fatalf("unexpected log entry: %v", entry)
	}

	buf.Reset()
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-456")
	expected := errors.New("boom")
	err = Logging(logger)(func(c echo.Context) error {
		return expected
	})(c)
	if !errors.Is(err, expected) {
		t.Fatalf("expected error to bubble up")
	}
	if !strings.Contains(buf.String(), "rid-456") || !strings.Contains(buf.String(), logrus.WarnLevel.String()) {
		t.Fatalf("expected warning entry with request id, got %s", buf.String())
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.String(http.StatusOK, RequestIDFromContext(c)) }

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "caller-id")
	rec := httptest.NewRecorder()
	if err := RequestID()(next)(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Body.String() != "caller-id" || rec.Header().Get(echo.HeaderXRequestID) != "caller-id" {
		t.Fatalf("expected caller id to be kept, got %q", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, strings.Repeat("x", 200))
	rec = httptest.NewRecorder()
	_ = RequestID()(next)(e.NewContext(req, rec))
	if got := rec.Body.String(); len(got) != 36 {
		t.Fatalf("expected generated uuid, got %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	mw := RateLimit(config.RateLimitConfig{Requests: 1, Interval: time.Minute})
	e := echo.New()
	calls := 0
	next := func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	}

	rec := httptest.NewRecorder()
	_ = mw(next)(e.NewContext(httptest.NewRequest(http.MethodPost, "/operator/confirm", nil), rec))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	_ = mw(next)(e.NewContext(httptest.NewRequest(http.MethodPost, "/operator/confirm", nil), rec))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be limited, got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("expected next called once, got %d", calls)
	}

	open := RateLimit(config.RateLimitConfig{})
	for i := 0; i < 3; i++ {
		rec = httptest.NewRecorder()
		_ = open(next)(e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected disabled limiter to pass, got %d", rec.Code)
		}
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	cases := map[string]struct {
		role string
		need string
		want int
	}{
		"missing":         {need: auth.RoleViewer, want: http.StatusForbidden},
		"viewer reads":    {role: auth.RoleViewer, need: auth.RoleViewer, want: http.StatusOK},
		"viewer confirms": {role: auth.RoleViewer, need: auth.RoleOperator, want: http.StatusForbidden},
		"operator":        {role: auth.RoleOperator, need: auth.RoleOperator, want: http.StatusOK},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			if tc.role != "" {
				c.Set(ContextKeyRole, tc.role)
			}
			_ = RequireRole(tc.need)(next)(c)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
