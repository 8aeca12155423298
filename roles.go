package auth

// UserRole is the user's role. Only the predefined values are valid.
type UserRole string

const (
	// RoleUser is a regular account
	RoleUser UserRole = "user"
	// RoleAdmin is an administrator account
	RoleAdmin UserRole = "admin"
)

// DefaultRole is assigned on sign-up when no role is requested
const DefaultRole = RoleUser

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r UserRole) String() string {
	return string(r)
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleUser,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}

// RoleAllowList is a set of roles permitted through an authorization gate.
// An empty list admits every authenticated role.
type RoleAllowList []UserRole

// Permits reports whether role passes the allow-list
func (l RoleAllowList) Permits(role UserRole) bool {
	if len(l) == 0 {
		return true
	}
	for _, r := range l {
		if r == role {
			return true
		}
	}
	return false
}
