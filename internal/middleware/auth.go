package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cartforge/cartforge/internal/domain/user"
)

type authUserCtxKey struct{}

// TokenValidator resolves a bearer token to the user behind it.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*user.User, error)
}

// Auth returns middleware that resolves an optional Authorization header.
// A valid bearer token puts the user in the request context; no header at
// all passes the request through as a guest. Guests are first-class callers
// on the cart surface, so absence of credentials is not an error here — the
// access gates decide per operation what guests may do.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header {
				http.Error(w, `{"error":"invalid authorization header"}`, http.StatusUnauthorized)
				return
			}

			u, err := validator.ValidateAccessToken(r.Context(), token)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, authUserCtxKey{}, u)
}

// UserFromContext returns the authenticated user, or nil for guests.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(authUserCtxKey{}).(*user.User)
	return u
}
