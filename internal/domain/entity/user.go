package entity

import (
	"time"
)

// Roles recognized by the authorization model. Everyone registers as a
// member; admins are promoted through the admin-only role endpoint or
// seeded out of band.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// IsValidRole reports whether role is one of the recognized roles.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleMember
}

// User is the aggregate root for the credential store. Password holds a
// bcrypt hash and is never serialized.
type User struct {
	ID        string
	Email     string
	Password  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the user holds blanket access.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserView is the password-stripped shape returned by the API.
type UserView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// View strips the password hash for API responses.
func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
