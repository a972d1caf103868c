package auth

// Role represents a dashboard user role.
type Role string

const (
	// RoleViewer can read the overview display.
	RoleViewer Role = "viewer"
	// RoleStaff can additionally read the cleaning schedule.
	RoleStaff Role = "staff"
	// RoleManager can read analytics, export reports, and manage evaluations.
	RoleManager Role = "manager"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleViewer, RoleStaff, RoleManager:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies required role.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleViewer:
		return 1
	case RoleStaff:
		return 2
	case RoleManager:
		return 3
	default:
		return 0
	}
}
