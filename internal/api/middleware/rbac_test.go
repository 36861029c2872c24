package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/contesthub/contest-service/internal/core/domain"
)

func rbacContext(role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(RoleKey, role)
	return c, rec
}

func TestRBAC_Allows(t *testing.T) {
	c, rec := rbacContext("admin")

	called := false
	handler := RBAC(domain.RoleAdmin, domain.RoleCreator)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_Rejects(t *testing.T) {
	tests := []struct {
		role    string
		wantErr error
	}{
		{"user", domain.ErrForbidden},
		{"creator", domain.ErrForbidden},
		{"", domain.ErrRegistrationRequired},
	}

	for _, tc := range tests {
		c, _ := rbacContext(tc.role)
		handler := RBAC(domain.RoleAdmin)(func(c echo.Context) error {
			t.Fatalf("role %q: should not reach next handler", tc.role)
			return nil
		})

		err := handler(c)
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("role %q: expected %v, got %v", tc.role, tc.wantErr, err)
		}
		if domain.KindOf(err) != domain.KindForbidden {
			t.Errorf("role %q: expected forbidden kind, got %s", tc.role, domain.KindOf(err))
		}
	}
}
