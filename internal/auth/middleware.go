package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/identity"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/platform/httpx"
)

// PermissionChecker answers fine-grained permission checks for a user. It is
// satisfied by the catalog service.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, permission string) (bool, error)
}

// Middleware wires the access control chain: token validation first, then
// role membership, then optional permission checks.
type Middleware struct {
	Service     *Service
	Logger      *slog.Logger
	Permissions PermissionChecker
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// Authenticate validates the bearer token and attaches the resolved user to
// the request context. Failures short-circuit with the terminal response.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			httpx.Fail(w, http.StatusUnauthorized, "authorization required")
			return
		}
		user, err := m.Service.CurrentUser(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenInvalid):
				httpx.Fail(w, http.StatusUnauthorized, "invalid or expired token")
			case errors.Is(err, identity.ErrNotFound):
				httpx.RespondError(w, httpx.ErrNotFound)
			default:
				if m.Logger != nil {
					m.Logger.Error("token validation", slog.Any("error", err))
				}
				httpx.RespondError(w, err)
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// RequireRole ensures the resolved user holds one of the allowed roles. It
// must run after Authenticate; a missing context user is an ordering
// violation and yields 401.
func (m Middleware) RequireRole(allowed ...identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthenticated)
				return
			}
			if !slices.Contains(allowed, user.Role) {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission ensures the resolved user's access profile grants the
// given permission. Runs after Authenticate; no-op when no checker is wired.
func (m Middleware) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.Permissions == nil {
				next.ServeHTTP(w, r)
				return
			}
			user, ok := UserFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthenticated)
				return
			}
			granted, err := m.Permissions.HasPermission(r.Context(), user.ID, permission)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("permission check", slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			if !granted {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
