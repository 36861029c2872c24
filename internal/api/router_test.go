package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/contesthub/contest-service/internal/core/domain"
	"github.com/contesthub/contest-service/internal/core/ports"
)

type tokenVerifier map[string]string

func (v tokenVerifier) Verify(_ context.Context, token string) (string, error) {
	if email, ok := v[token]; ok {
		return email, nil
	}
	return "", domain.ErrUnauthenticated
}

type routerRoles struct {
	ports.RoleService
	roles map[string]domain.Role
}

func (r routerRoles) GetRole(_ context.Context, email string) (domain.Role, error) {
	if role, ok := r.roles[email]; ok {
		return role, nil
	}
	return "", domain.ErrUserNotFound
}

func (r routerRoles) ListUsers(_ context.Context, actor ports.Actor) ([]*domain.User, error) {
	return []*domain.User{{Email: actor.Email, Role: actor.Role}}, nil
}

type routerPayments struct {
	ports.PaymentService
}

func (routerPayments) Confirm(_ context.Context, sessionID string) (*ports.ConfirmResult, error) {
	return &ports.ConfirmResult{TransactionID: "pi_" + sessionID, PaymentID: "pay_1"}, nil
}

func newTestRouter() http.Handler {
	reg := prometheus.NewRegistry()
	return NewRouter(Services{
		Roles: routerRoles{roles: map[string]domain.Role{
			"admin@example.com": domain.RoleAdmin,
			"user@example.com":  domain.RoleUser,
		}},
		Payments: routerPayments{},
	}, RouterOptions{
		Verifier:     tokenVerifier{"admin-token": "admin@example.com", "user-token": "user@example.com", "new-token": "new@example.com"},
		ClientDomain: "http://localhost:5173",
		MongoPing:    func(context.Context) error { return nil },
		Log:          zerolog.Nop(),
		Registerer:   reg,
		Gatherer:     reg,
	})
}

func do(h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ConfirmIsPublic(t *testing.T) {
	rec := do(newTestRouter(), http.MethodPost, "/payments/confirm", "", `{"sessionId":"cs_1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"transactionId":"pi_cs_1"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRouter_AdminRoute(t *testing.T) {
	h := newTestRouter()

	cases := []struct {
		token string
		want  int
	}{
		{"", http.StatusUnauthorized},
		{"garbage", http.StatusUnauthorized},
		{"new-token", http.StatusForbidden},
		{"user-token", http.StatusForbidden},
		{"admin-token", http.StatusOK},
	}
	for _, tc := range cases {
		if rec := do(h, http.MethodGet, "/users", tc.token, ""); rec.Code != tc.want {
			t.Fatalf("token %q: expected %d, got %d", tc.token, tc.want, rec.Code)
		}
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h := newTestRouter()

	if rec := do(h, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/health/ready", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health/ready, got %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/metrics", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
}

func TestRouter_RequestIDHeader(t *testing.T) {
	rec := do(newTestRouter(), http.MethodGet, "/health", "", "")
	if len(rec.Header().Get("X-Request-Id")) != 36 {
		t.Fatalf("expected uuid request id, got %q", rec.Header().Get("X-Request-Id"))
	}
}
