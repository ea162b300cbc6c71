package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"staffdesk/internal/apperr"
	"staffdesk/internal/logger"
	"staffdesk/internal/models"

	"github.com/gorilla/mux"
)

type fakeResolver map[string]models.Principal

func (f fakeResolver) Resolve(_ context.Context, token string) (models.Principal, error) {
	if token == "pending" {
		return models.Principal{}, apperr.Forbidden("account not yet approved")
	}
	p, ok := f[token]
	if !ok {
		return models.Principal{}, apperr.Unauthorized("invalid or expired token")
	}
	return p, nil
}

var resolver = fakeResolver{
	"admin-token":    {AccountID: 1, Role: models.RoleAdmin},
	"employee-token": {AccountID: 2, Role: models.RoleEmployee},
}

func echoPrincipal(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	json.NewEncoder(w).Encode(p)
}

func TestRequireRole(t *testing.T) {
	m := NewAuthMiddleware(resolver)
	h := m.RequireRole(models.RoleAdmin)(http.HandlerFunc(echoPrincipal))

	tests := []struct {
		name     string
		token    string
		accept   string
		status   int
		location string
	}{
		{"admin api", "admin-token", "application/json", http.StatusOK, ""},
		{"employee api", "employee-token", "application/json", http.StatusForbidden, ""},
		{"anonymous api", "", "application/json", http.StatusUnauthorized, ""},
		{"bad token api", "nope", "", http.StatusUnauthorized, ""},
		{"pending api", "pending", "", http.StatusForbidden, ""},
		{"anonymous page", "", "text/html,application/xhtml+xml", http.StatusFound, "/auth/login"},
		{"employee page", "employee-token", "text/html", http.StatusFound, "/employee"},
		{"pending page", "pending", "text/html", http.StatusFound, "/auth/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.location != "" && rec.Header().Get("Location") != tt.location {
				t.Errorf("Location = %q, want %q", rec.Header().Get("Location"), tt.location)
			}
			if tt.status >= 400 && !strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
				t.Errorf("error body is not JSON: %q", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestAdminPageRedirectsToAdminHome(t *testing.T) {
	m := NewAuthMiddleware(resolver)
	h := m.RequireRole(models.RoleEmployee)(http.HandlerFunc(echoPrincipal))

	req := httptest.NewRequest(http.MethodGet, "/employee/tasks", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/admin" {
		t.Errorf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestAuthenticateStoresPrincipal(t *testing.T) {
	m := NewAuthMiddleware(resolver)
	h := m.Authenticate(http.HandlerFunc(echoPrincipal))

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer employee-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var p models.Principal
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.AccountID != 2 || p.Role != models.RoleEmployee {
		t.Errorf("principal = %+v", p)
	}
}

func TestQueryTokenOnlyForWebsocketUpgrade(t *testing.T) {
	m := NewAuthMiddleware(resolver)
	h := m.Authenticate(http.HandlerFunc(echoPrincipal))

	plain := httptest.NewRequest(http.MethodGet, "/api/notifications?token=admin-token", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, plain)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("plain request with query token: %d", rec.Code)
	}

	upgrade := httptest.NewRequest(http.MethodGet, "/api/notifications/ws?token=admin-token", nil)
	upgrade.Header.Set("Connection", "Upgrade")
	upgrade.Header.Set("Upgrade", "websocket")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, upgrade)
	if rec.Code != http.StatusOK {
		t.Errorf("upgrade with query token: %d", rec.Code)
	}
}

func TestPanicRecovery(t *testing.T) {
	h := PanicRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["error"] != "internal server error" {
		t.Errorf("body = %v", body)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewWithWriter(&buf)

	var fromCtx bool
	h := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := logger.FromContext(r.Context())
		l.Info().Msg("inside handler")
		fromCtx = true
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !fromCtx || rec.Header().Get(RequestIDHeader) != "req-123" {
		t.Fatalf("request id header = %q", rec.Header().Get(RequestIDHeader))
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("log lines = %d: %s", len(lines), buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, `"request_id":"req-123"`) {
			t.Errorf("line without request id: %s", line)
		}
	}
	if !strings.Contains(lines[1], `"status":418`) || !strings.Contains(lines[1], `"level":"warn"`) {
		t.Errorf("access line = %s", lines[1])
	}

	buf.Reset()
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("generated request id missing")
	}
	if strings.Contains(buf.String(), "HTTP request") {
		t.Error("health checks should not be access-logged")
	}
}

func TestRouteLabelUsesTemplate(t *testing.T) {
	var label string
	r := mux.NewRouter()
	r.HandleFunc("/api/tasks/{id}", func(w http.ResponseWriter, req *http.Request) {
		label = routeLabel(req)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tasks/42", nil))
	if label != "/api/tasks/{id}" {
		t.Errorf("label = %q", label)
	}
	if got := routeLabel(httptest.NewRequest(http.MethodGet, "/nowhere", nil)); got != "unmatched" {
		t.Errorf("unmatched label = %q", got)
	}
}

func TestPageCookieToken(t *testing.T) {
	m := NewAuthMiddleware(resolver)
	h := m.RequireRole(models.RoleAdmin)(http.HandlerFunc(echoPrincipal))

	page := httptest.NewRequest(http.MethodGet, "/admin", nil)
	page.Header.Set("Accept", "text/html")
	page.AddCookie(&http.Cookie{Name: "token", Value: "admin-token"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, page)
	if rec.Code != http.StatusOK {
		t.Errorf("page with cookie: %d", rec.Code)
	}

	api := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	api.AddCookie(&http.Cookie{Name: "token", Value: "admin-token"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, api)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("api with cookie only: %d", rec.Code)
	}
}
