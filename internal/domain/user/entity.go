package user

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"      // Full access, manages users
	RoleManager    Role = "manager"    // Runs departments, processes and workflows
	RoleSupervisor Role = "supervisor" // Records attendance and handles NTEs for a cluster
	RoleAgent      Role = "agent"      // Works assigned workflow tasks
)

var Roles = []string{string(RoleAdmin), string(RoleManager), string(RoleSupervisor), string(RoleAgent)}

type User struct {
	ID              string
	Email           string
	FullName        string
	PasswordHash    *string
	Role            Role
	IsActive        bool
	OAuthProvider   *string
	OAuthProviderID *string
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Join
	EmployeeID *string
}

// IsAdmin checks if user is an administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsManager checks if user is manager or admin
func (u *User) IsManager() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}
