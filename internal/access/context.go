package access

import (
	"github.com/cartforge/cartforge/internal/domain/tenant"
	"github.com/cartforge/cartforge/internal/domain/user"
)

// Signal keys carried in the request-scoped key/value store. Both are
// cookie-derived: the admin surface sets the selected tenant, the storefront
// sets the tenant domain of the host it serves.
const (
	SignalSelectedTenant = "cartforge-tenant"
	SignalTenantDomain   = "cartforge-tenant-domain"
)

// RequestContext bundles everything one operation's access resolution needs.
// It exists only for the duration of that operation and is never persisted.
type RequestContext struct {
	// User is the authenticated caller, nil for guests.
	User *user.User
	// Signals is the cookie-derived key/value store.
	Signals map[string]string
	// Secret is the out-of-band guest cart secret from query parameters.
	Secret string
}

// SelectedTenant reads the selected-tenant signal and normalizes it to a
// tenant ID. The second return is false when the signal is absent.
func (rc RequestContext) SelectedTenant() (tenant.ID, bool) {
	raw, ok := rc.Signals[SignalSelectedTenant]
	if !ok || raw == "" {
		return tenant.ID{}, false
	}
	return tenant.ParseID(raw), true
}

// TenantDomain reads the tenant-domain signal.
func (rc RequestContext) TenantDomain() (string, bool) {
	raw, ok := rc.Signals[SignalTenantDomain]
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

// AdminTenants returns the tenants in which the caller holds a tenant-admin
// role, per the given marker set.
func (rc RequestContext) AdminTenants(tenantAdminRoles []string) []tenant.ID {
	if rc.User == nil {
		return nil
	}
	var ids []tenant.ID
	for _, m := range rc.User.Memberships {
		if m.Tenant.IsZero() {
			continue
		}
		if IsTenantAdmin(m.Roles, tenantAdminRoles) {
			ids = append(ids, m.Tenant)
		}
	}
	return ids
}
