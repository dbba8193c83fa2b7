package middleware

import (
	"net/http"

	"github.com/scrapmandi/scrapmandi-backend/api/responses"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
	"github.com/scrapmandi/scrapmandi-backend/pkg/logger"
)

// RequireRole gates a route subtree to callers carrying the given role claim.
// Runs after Auth, which seeds the role into the request context.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := RoleFromContext(r.Context())
			if got != role {
				if logg != nil {
					ctx := logg.WithFields(r.Context(), map[string]any{
						"required_role": role,
						"actor_role":    got,
					})
					logg.Warn(ctx, "role check failed")
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
