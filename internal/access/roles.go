package access

// Default marker role sets. Deployments override them through Config.
var (
	DefaultSuperAdminRoles  = []string{"super-admin"}
	DefaultTenantAdminRoles = []string{"tenant-admin"}
	DefaultGlobalAdminRoles = []string{"admin"}
)

// IsSuperAdmin reports whether the role set intersects the super-admin
// marker set.
func IsSuperAdmin(roles, markers []string) bool {
	return intersects(roles, markers)
}

// IsTenantAdmin reports whether a membership's role set intersects the
// tenant-admin marker set.
func IsTenantAdmin(membershipRoles, markers []string) bool {
	return intersects(membershipRoles, markers)
}

func intersects(roles, markers []string) bool {
	for _, r := range roles {
		for _, m := range markers {
			if r == m {
				return true
			}
		}
	}
	return false
}
