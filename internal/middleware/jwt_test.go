package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/azizemirhan/hubcenter/internal/auth"
)

func TestBearerMiddleware(t *testing.T) {
	e := echo.New()
	manager := auth.NewTokenManager("secret", 0)

	token, err := manager.Issue("ops-laptop", auth.RoleOperator)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tests := map[string]struct {
		header     string
		expectCode int
	}{
		"missing header": {
			expectCode: http.StatusUnauthorized,
		},
		"invalid header": {
			header:     "Basic token",
			expectCode: http.StatusUnauthorized,
		},
		"invalid token": {
			header:     "Bearer invalid",
			expectCode: http.StatusUnauthorized,
		},
		"success": {
			header:     "Bearer " + token,
			expectCode: http.StatusOK,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/operator/pending", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := Bearer(manager)(func(c echo.Context) error {
				if c.Get(ContextKeySubject) != "ops-laptop" || c.Get(ContextKeyRole) != auth.RoleOperator {
					t.Fatalf("expected claims in context")
				}
				return c.NoContent(http.StatusOK)
			})
			_ = handler(c)

			if rec.Code != tc.expectCode {
				t.Fatalf("expected status %d, got %d", tc.expectCode, rec.Code)
			}
		})
	}
}

func TestBearerWithoutManagerIsOpen(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	_ = Bearer(nil)(func(c echo.Context) error {
		if c.Get(ContextKeyRole) != auth.RoleOperator {
			t.Fatalf("expected operator role on open server")
		}
		return c.NoContent(http.StatusNoContent)
	})(c)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}
