package middleware

import (
	"context"
	"net/http"

	"github.com/cartforge/cartforge/internal/access"
)

// Cookie and query parameter names for the request signals the access
// resolver consumes. The admin UI sets the selected-tenant cookie; the
// storefront sets the tenant-domain cookie; guests carry the cart secret as
// a query parameter. Headers of the same names serve non-browser clients.
const (
	CookieSelectedTenant = access.SignalSelectedTenant
	CookieTenantDomain   = access.SignalTenantDomain
	QueryCartSecret      = "secret"
)

type signalsCtxKey struct{}
type secretCtxKey struct{}

// Signals is middleware that extracts the tenant signals and the guest cart
// secret from the request and stores them in the context. It never rejects:
// missing signals simply resolve to narrower access later.
func Signals(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signals := make(map[string]string, 2)
		for _, name := range []string{CookieSelectedTenant, CookieTenantDomain} {
			if c, err := r.Cookie(name); err == nil && c.Value != "" {
				signals[name] = c.Value
				continue
			}
			if v := r.Header.Get(name); v != "" {
				signals[name] = v
			}
		}

		ctx := r.Context()
		if len(signals) > 0 {
			ctx = context.WithValue(ctx, signalsCtxKey{}, signals)
		}
		if secret := r.URL.Query().Get(QueryCartSecret); secret != "" {
			ctx = context.WithValue(ctx, secretCtxKey{}, secret)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SignalsFromContext returns the extracted signal map, possibly nil.
func SignalsFromContext(ctx context.Context) map[string]string {
	s, _ := ctx.Value(signalsCtxKey{}).(map[string]string)
	return s
}

// SecretFromContext returns the guest cart secret, or empty.
func SecretFromContext(ctx context.Context) string {
	s, _ := ctx.Value(secretCtxKey{}).(string)
	return s
}

// RequestContextFrom assembles the access request context from everything
// the middleware chain extracted.
func RequestContextFrom(ctx context.Context) access.RequestContext {
	return access.RequestContext{
		User:    UserFromContext(ctx),
		Signals: SignalsFromContext(ctx),
		Secret:  SecretFromContext(ctx),
	}
}
