package domain

import "time"

// Role is a user's access scope.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleFish  Role = "fish"
	RolePork  Role = "pork"
)

// roleDepartments maps staff roles to the single department they work in.
// Admin is absent on purpose: it is not bound to one department.
var roleDepartments = map[Role]Department{
	RoleFish: DepartmentFish,
	RolePork: DepartmentPork,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	if r == RoleAdmin {
		return true
	}
	_, ok := roleDepartments[r]
	return ok
}

// Department returns the department a staff role belongs to.
func (r Role) Department() (Department, bool) {
	d, ok := roleDepartments[r]
	return d, ok
}

// User models an authenticated actor in the system.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether u carries the fields every signed-in user must have.
func (u User) Valid() bool {
	return u.ID != "" && u.Username != "" && u.Role.Valid()
}

// IsAdmin reports whether u has the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
