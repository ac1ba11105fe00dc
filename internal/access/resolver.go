package access

import (
	"context"
)

// Policy selects which precedence the tenant resolver applies. The two are
// not interchangeable: they produce different visible sets for the same
// caller.
type Policy string

const (
	// PolicyTenantAdminFirst treats tenant-admin scoping and the global-admin
	// fallback as independent branches, in that order. This is the default.
	PolicyTenantAdminFirst Policy = "tenant-admin-first"
	// PolicyGlobalAdminGate requires the global-admin predicate to pass
	// before any tenant scoping is considered, and narrows strictly to the
	// caller's own tenant set.
	PolicyGlobalAdminGate Policy = "global-admin-gate"
)

// Config carries the resolver's marker sets and policy switches.
type Config struct {
	SuperAdminRoles  []string
	TenantAdminRoles []string
	Policy           Policy
	// IncludeUntenanted widens scope predicates with "tenant absent" so
	// records created before tenant assignment completed stay visible to
	// tenant admins. Excluding them would silently hide legitimate records.
	IncludeUntenanted bool
}

// DefaultConfig returns the resolver defaults.
func DefaultConfig() Config {
	return Config{
		SuperAdminRoles:   DefaultSuperAdminRoles,
		TenantAdminRoles:  DefaultTenantAdminRoles,
		Policy:            PolicyTenantAdminFirst,
		IncludeUntenanted: true,
	}
}

// GlobalAdminFn is the externally supplied "is this caller a global admin"
// predicate. Its failure propagates to the caller of the resolver.
type GlobalAdminFn func(ctx context.Context, rc RequestContext) (bool, error)

// HasTenantAccess decides visibility of tenant-scoped records for the
// caller. Precedence is strict; later branches run only when earlier ones do
// not resolve:
//
//  1. no caller: deny
//  2. super-admin marker: grant, bypassing everything including selection
//  3. tenant-admin memberships: scope to the selected tenant when it is in
//     the admin set, otherwise to the whole admin set
//  4. global-admin fallback: scope to all membership tenants, or grant when
//     the caller has no memberships at all
//  5. deny
func HasTenantAccess(ctx context.Context, rc RequestContext, isAdmin GlobalAdminFn, cfg Config) (Decision, error) {
	if rc.User == nil {
		return Deny(), nil
	}

	if IsSuperAdmin(rc.User.Roles, cfg.SuperAdminRoles) {
		return Grant(), nil
	}

	if cfg.Policy == PolicyGlobalAdminGate {
		return globalAdminGated(ctx, rc, isAdmin)
	}

	if adminTenants := rc.AdminTenants(cfg.TenantAdminRoles); len(adminTenants) > 0 {
		if selected, ok := rc.SelectedTenant(); ok && selected.In(adminTenants) {
			return Scope(cfg.widen(Eq("tenant", selected.Value()))), nil
		}
		// Selection outside the admin set is ignored, not an error.
		return Scope(cfg.widen(TenantIn(adminTenants))), nil
	}

	ok, err := isAdmin(ctx, rc)
	if err != nil {
		return Deny(), err
	}
	if ok {
		if all := rc.User.TenantIDs(); len(all) > 0 {
			return Scope(cfg.widen(TenantIn(all))), nil
		}
		// A global admin outside any tenant structure sees everything.
		return Grant(), nil
	}

	return Deny(), nil
}

// globalAdminGated is the alternate policy: global-admin is a prerequisite,
// and scope is strictly the caller's own tenant set.
func globalAdminGated(ctx context.Context, rc RequestContext, isAdmin GlobalAdminFn) (Decision, error) {
	ok, err := isAdmin(ctx, rc)
	if err != nil {
		return Deny(), err
	}
	if !ok {
		return Deny(), nil
	}
	if all := rc.User.TenantIDs(); len(all) > 0 {
		return Scope(TenantIn(all)), nil
	}
	return Grant(), nil
}

// widen adds the "tenant absent" branch when the policy includes untenanted
// records in tenant-admin scope.
func (cfg Config) widen(p Predicate) Predicate {
	if !cfg.IncludeUntenanted {
		return p
	}
	return Or(p, Missing("tenant"))
}
