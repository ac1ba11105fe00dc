package access

// TenantBaseListFilter scopes the administrative list view. Unlike
// HasTenantAccess it always resolves to a predicate, never to an
// unconditional grant or deny:
//
//   - no caller, or a caller with no tenant-admin membership and no
//     super-admin role, receives a predicate matching zero records —
//     listing is a privileged surface and must never fall open;
//   - super-admins are unrestricted only while no tenant is selected; a
//     selected tenant narrows the view even for them, so the admin UI's
//     "current tenant" is respected rather than bypassed;
//   - tenant-admins are scoped to the selected tenant when it is in their
//     admin set, otherwise to the whole admin set.
//
// A nil return means no restriction.
func TenantBaseListFilter(rc RequestContext, cfg Config) Predicate {
	if rc.User == nil {
		return NoMatch()
	}

	selected, hasSelected := rc.SelectedTenant()

	if IsSuperAdmin(rc.User.Roles, cfg.SuperAdminRoles) {
		if hasSelected {
			return Eq("tenant", selected.Value())
		}
		return nil
	}

	adminTenants := rc.AdminTenants(cfg.TenantAdminRoles)
	if len(adminTenants) == 0 {
		return NoMatch()
	}

	if hasSelected && selected.In(adminTenants) {
		return Eq("tenant", selected.Value())
	}
	return TenantIn(adminTenants)
}
