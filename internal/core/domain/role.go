package domain

const (
	RoleSO                = "SO"
	RoleHeadOfAdmin       = "head of ADMIN"
	RoleHeadOfDevelopment = "head of development"
)

// allRoles is the closed role set in display order.
var allRoles = []string{
	RoleSO, RoleHeadOfAdmin, RoleHeadOfDevelopment,
	"ADM", "DEV", "HOA", "HOD", "VIP", "MD", "GD", "ASDV", "HOE", "EN", "PR", "IN",
}

var privilegedRoles = map[string]struct{}{
	RoleSO:                {},
	RoleHeadOfAdmin:       {},
	RoleHeadOfDevelopment: {},
}

var knownRoles = func() map[string]struct{} {
	m := make(map[string]struct{}, len(allRoles))
	for _, r := range allRoles {
		m[r] = struct{}{}
	}
	return m
}()

// IsPrivileged reports whether role may manage users, announcements and read
// the audit log. Unknown roles are never privileged.
func IsPrivileged(role string) bool {
	_, ok := privilegedRoles[role]
	return ok
}

// IsKnownRole reports whether role belongs to the closed role set.
func IsKnownRole(role string) bool {
	_, ok := knownRoles[role]
	return ok
}

// AllRoles returns a copy of the role set in display order.
func AllRoles() []string {
	out := make([]string, len(allRoles))
	copy(out, allRoles)
	return out
}
