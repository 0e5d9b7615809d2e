package authz

import (
	"net/http"

	"log/slog"

	"github.com/upteky/upteky-central/internal/platform/httpx"
	"github.com/upteky/upteky-central/internal/shared"
)

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Gate   *Gate
	Logger *slog.Logger
}

// WithActor resolves the actor from the session claims and stores it in
// the request context. Requests without a usable identity are rejected.
func (m Middleware) WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := m.currentActor(r)
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no authenticated session")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
	})
}

// Require ensures the current actor holds the given permission.
func (m Middleware) Require(permission Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := m.currentActor(r)
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no authenticated session")
				return
			}
			decision, err := m.Gate.Authorize(r.Context(), actor, permission, nil)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("authorize", slog.String("permission", string(permission)), slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if !decision.Allowed {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", decision.Reason)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

// RequireRole ensures the current actor holds one of the given roles,
// bypassing the permission matrix. Used for the Admin-only surfaces.
func (m Middleware) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := m.currentActor(r)
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no authenticated session")
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
					return
				}
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient role")
		})
	}
}

func (m Middleware) currentActor(r *http.Request) (Actor, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return Actor{}, false
	}
	role, err := ParseRole(sess.Role())
	if err != nil {
		if m.Logger != nil {
			m.Logger.Warn("session carries unknown role", slog.String("role", sess.Role()))
		}
		return Actor{}, false
	}
	return Actor{UserID: sess.User(), Role: role}, true
}
