package v1

var authenticationAllowlist = map[string]bool{
	"/api/v1/auth/register": true,
	"/api/v1/auth/signin":   true,
}

// isUnauthorizeAllowed returns whether the path is exempted from authentication.
func isUnauthorizeAllowed(fullPath string) bool {
	return authenticationAllowlist[fullPath]
}

var allowedPathOnlyForStaff = map[string]bool{
	"/api/v1/admin/stats":    true,
	"/api/v1/admin/audit":    true,
	"/api/v1/admin/settings": true,
	"/api/v1/users":          true,
}

// isOnlyForStaffAllowedPath returns true if the path is restricted to librarians and admins.
func isOnlyForStaffAllowedPath(path string) bool {
	return allowedPathOnlyForStaff[path]
}
