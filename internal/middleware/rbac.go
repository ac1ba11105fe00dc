package middleware

import (
	"net/http"

	"github.com/cartforge/cartforge/internal/access"
)

// RequireSuperAdmin returns middleware that restricts a route to callers
// holding one of the super-admin marker roles. Tenant administration is the
// only surface gated this way; everything else resolves through the access
// gates per operation.
func RequireSuperAdmin(markers []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := UserFromContext(r.Context())
			if u == nil {
				http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
				return
			}
			if !access.IsSuperAdmin(u.Roles, markers) {
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
