package access

import "context"

// Fn is a single access check: it resolves a request to a Decision. Checks
// never error for "not authorized"; an error means a dependency the check
// consulted failed.
type Fn func(ctx context.Context, rc RequestContext) (Decision, error)

// AccessOR composes checks disjunctively. A grant short-circuits; scope
// predicates union; the result is a deny only when every check denies.
func AccessOR(fns ...Fn) Fn {
	return func(ctx context.Context, rc RequestContext) (Decision, error) {
		result := Deny()
		for _, fn := range fns {
			d, err := fn(ctx, rc)
			if err != nil {
				return Deny(), err
			}
			result = result.Or(d)
			if result.Granted() {
				return result, nil
			}
		}
		return result, nil
	}
}

// Conditional gates a check behind a configuration flag; disabled checks
// always deny.
func Conditional(enabled bool, fn Fn) Fn {
	if enabled {
		return fn
	}
	return func(context.Context, RequestContext) (Decision, error) {
		return Deny(), nil
	}
}

// IsGuest grants only unauthenticated callers.
func IsGuest(_ context.Context, rc RequestContext) (Decision, error) {
	if rc.User == nil {
		return Grant(), nil
	}
	return Deny(), nil
}

// IsAuthenticated grants any authenticated caller.
func IsAuthenticated(_ context.Context, rc RequestContext) (Decision, error) {
	if rc.User != nil {
		return Grant(), nil
	}
	return Deny(), nil
}

// IsDocumentOwner scopes an authenticated caller to the carts they own.
func IsDocumentOwner(_ context.Context, rc RequestContext) (Decision, error) {
	if rc.User == nil {
		return Deny(), nil
	}
	return Scope(Eq("customer", rc.User.ID)), nil
}

// HasCartSecretAccess scopes a caller supplying a guest secret to carts
// whose stored secret matches, via an exact-equality predicate pushed to the
// record store — the record is never loaded just to check access, and the
// store enforces the match atomically with the surrounding query. Active
// only when guest carts are enabled.
func HasCartSecretAccess(allowGuestCarts bool) Fn {
	return func(_ context.Context, rc RequestContext) (Decision, error) {
		if !allowGuestCarts || rc.Secret == "" {
			return Deny(), nil
		}
		return Scope(Eq("secret", rc.Secret)), nil
	}
}

// CartGates composes the effective per-operation access checks for carts.
type CartGates struct {
	cfg             Config
	isAdmin         GlobalAdminFn
	allowGuestCarts bool
}

// NewCartGates builds the cart gate set.
func NewCartGates(cfg Config, isAdmin GlobalAdminFn, allowGuestCarts bool) *CartGates {
	return &CartGates{cfg: cfg, isAdmin: isAdmin, allowGuestCarts: allowGuestCarts}
}

func (g *CartGates) tenantAccess(ctx context.Context, rc RequestContext) (Decision, error) {
	return HasTenantAccess(ctx, rc, g.isAdmin, g.cfg)
}

func (g *CartGates) globalAdmin(ctx context.Context, rc RequestContext) (Decision, error) {
	ok, err := g.isAdmin(ctx, rc)
	if err != nil {
		return Deny(), err
	}
	if ok {
		return Grant(), nil
	}
	return Deny(), nil
}

// Create resolves cart-creation access: admins, any authenticated caller,
// or guests when guest carts are enabled.
func (g *CartGates) Create(ctx context.Context, rc RequestContext) (Decision, error) {
	return AccessOR(
		g.globalAdmin,
		IsAuthenticated,
		Conditional(g.allowGuestCarts, IsGuest),
	)(ctx, rc)
}

// Read resolves read access to a single cart.
func (g *CartGates) Read(ctx context.Context, rc RequestContext) (Decision, error) {
	return AccessOR(
		g.tenantAccess,
		IsDocumentOwner,
		HasCartSecretAccess(g.allowGuestCarts),
	)(ctx, rc)
}

// Update resolves mutation access to a single cart.
func (g *CartGates) Update(ctx context.Context, rc RequestContext) (Decision, error) {
	return g.Read(ctx, rc)
}

// Delete resolves delete access to a single cart.
func (g *CartGates) Delete(ctx context.Context, rc RequestContext) (Decision, error) {
	return g.Read(ctx, rc)
}

// ListFilter returns the admin list-view predicate. Nil means unrestricted.
func (g *CartGates) ListFilter(rc RequestContext) Predicate {
	return TenantBaseListFilter(rc, g.cfg)
}
