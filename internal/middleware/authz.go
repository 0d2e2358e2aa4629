package middleware

import (
	"context"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/session"
	"net/http"

	"github.com/casbin/casbin/v2"
)

// IdentityResolver turns the user id kept in the session into an identity.
type IdentityResolver interface {
	Identify(ctx context.Context, userID int64) (auth.Identity, error)
}

// Authorizer creates a new middleware for authorization.
// It resolves the caller from the session, stores the identity in the
// request context, and checks the route against the casbin policies.
func Authorizer(e casbin.IEnforcer, sm session.Manager, users IdentityResolver, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := users.Identify(r.Context(), sm.GetInt64(r.Context(), session.UserIDKey))
			if err != nil {
				log.Error(err, "Failed to resolve session identity")
				WriteError(w, http.StatusInternalServerError, "Authorization error")
				return
			}
			r = r.WithContext(SetIdentity(r.Context(), id))

			allowed, err := e.Enforce(id.Role(), r.URL.Path, r.Method)
			if err != nil {
				log.Error(err, "Casbin enforcement failed")
				WriteError(w, http.StatusInternalServerError, "Authorization error")
				return
			}

			if !allowed {
				if _, member := id.UserID(); !member {
					WriteError(w, http.StatusUnauthorized, "Login required")
					return
				}
				WriteError(w, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
