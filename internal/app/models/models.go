package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent    RoleType = "STUDENT"
	RoleInstructor RoleType = "INSTRUCTOR"
	RoleManager    RoleType = "MANAGER"
)

// Valid reports whether r is one of the known roles.
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleManager:
		return true
	}
	return false
}

// SelfRegistrable reports whether users may sign up with this role.
// Managers are provisioned from the admin CLI only.
func (r RoleType) SelfRegistrable() bool {
	return r == RoleStudent || r == RoleInstructor
}
