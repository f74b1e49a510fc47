package domain

import "time"

// Role is a coarse permission tier.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// OneOf reports whether r is a member of roles.
func (r Role) OneOf(roles []Role) bool {
	for _, allowed := range roles {
		if allowed == r {
			return true
		}
	}
	return false
}

// User models an account in the credential store.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserChanges is a partial update. Nil fields are left untouched.
// PasswordHash must already be hashed by the caller.
type UserChanges struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *Role
	UpdatedAt    time.Time
}
