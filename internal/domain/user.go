package domain

import (
	"strings"
	"time"
)

// Role is the canonical, upper-case role label stored on a user.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USUARIO"
)

// legacy snapshots stored roles with a framework prefix.
const legacyRolePrefix = "ROLE_"

// CanonicalRole normalizes a stored or requested role label.
func CanonicalRole(raw string) Role {
	r := strings.ToUpper(strings.TrimSpace(raw))
	r = strings.TrimPrefix(r, legacyRolePrefix)
	return Role(r)
}

// User is the domain model for registered customers and administrators.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	BirthDate    time.Time
	Email        string
	PasswordHash string
	Phone        string
	Commune      string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the unique login key of the user.
func (u *User) Identity() string {
	return u.Email
}

// Secret returns the stored password hash.
func (u *User) Secret() string {
	return u.PasswordHash
}

// Roles returns the granted roles, primary role first.
func (u *User) Roles() []Role {
	role := CanonicalRole(string(u.Role))
	if role == "" {
		role = RoleUser
	}
	return []Role{role}
}

// HasRole reports whether the user was granted role.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles() {
		if r == role {
			return true
		}
	}
	return false
}
