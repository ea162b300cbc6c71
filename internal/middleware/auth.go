package middleware

import (
	"context"
	"net/http"
	"strings"

	"staffdesk/internal/apperr"
	"staffdesk/internal/models"
	"staffdesk/pkg/utils"

	"github.com/gorilla/websocket"
)

type contextKey string

const PrincipalKey contextKey = "principal"

// TokenResolver turns a bearer token into the caller's current principal.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (models.Principal, error)
}

type AuthMiddleware struct {
	resolver TokenResolver
}

func NewAuthMiddleware(resolver TokenResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(models.Principal)
	return p, ok && p.Valid()
}

// HomePath is where a page request lands after a role mismatch.
func HomePath(role models.Role) string {
	if role == models.RoleAdmin {
		return "/admin"
	}
	return "/employee"
}

const (
	loginPath   = "/auth/login"
	tokenCookie = "token"
)

// bearerToken reads "Authorization: Bearer <token>". Websocket upgrades
// may pass ?token= and page navigations the token cookie, since browsers
// cannot set headers on either.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if websocket.IsWebSocketUpgrade(r) {
		return r.URL.Query().Get("token")
	}
	if c, err := r.Cookie(tokenCookie); err == nil && wantsHTML(r) {
		return c.Value
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func (m *AuthMiddleware) principal(r *http.Request) (models.Principal, error) {
	if p, ok := PrincipalFromContext(r.Context()); ok {
		return p, nil
	}
	token := bearerToken(r)
	if token == "" {
		return models.Principal{}, apperr.Unauthorized("authorization required")
	}
	return m.resolver.Resolve(r.Context(), token)
}

// Authenticate validates the token and re-reads the account so status
// changes take effect immediately.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := m.principal(r)
		if err != nil {
			utils.Error(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// RequireRole lets through callers holding one of roles. Page requests
// are redirected to the login page or the caller's home instead of
// receiving an error body.
func (m *AuthMiddleware) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := m.principal(r)
			if err != nil {
				if wantsHTML(r) {
					http.Redirect(w, r, loginPath, http.StatusFound)
					return
				}
				utils.Error(w, r, err)
				return
			}

			hasRole := false
			for _, role := range roles {
				if p.Role == role {
					hasRole = true
					break
				}
			}
			if !hasRole {
				if wantsHTML(r) {
					http.Redirect(w, r, HomePath(p.Role), http.StatusFound)
					return
				}
				utils.Error(w, r, apperr.Forbidden("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAdmin is RequireRole(models.RoleAdmin).
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireRole(models.RoleAdmin)(next)
}
