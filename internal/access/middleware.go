package access

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/lexvault/lexvault/internal/platform/httpx"
	"github.com/lexvault/lexvault/internal/shared"
)

// Middleware wires session authentication and permission guards for HTTP
// handlers.
type Middleware struct {
	Sessions *shared.SessionManager
	Logger   *slog.Logger
}

// Authenticate resolves the bearer token into a session and an access
// context built from the session's snapshot. Requests without a valid
// session get a 401 problem response.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}

		sess, err := m.Sessions.Get(r.Context(), token)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}

		ac, err := FromClaims(sess.Claims)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("rebuild access context", slog.Any("error", err))
			}
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}

		ctx := shared.ContextWithSession(r.Context(), sess)
		ctx = ContextWith(ctx, ac)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAny ensures the principal holds at least one of the required
// permissions. GLOBAL_ADMIN passes unconditionally.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			ac := FromContext(r.Context())
			if ac == nil {
				httpx.RespondError(w, shared.ErrUnauthorized)
				return
			}
			if !ac.HasAnyPermission(perms...) {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAll ensures the principal holds every required permission.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := FromContext(r.Context())
			if ac == nil {
				httpx.RespondError(w, shared.ErrUnauthorized)
				return
			}
			for _, perm := range perms {
				if !ac.HasPermission(perm) {
					httpx.RespondError(w, shared.ErrForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
