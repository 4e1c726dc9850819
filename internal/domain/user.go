package domain

import (
	"time"
)

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleMember Role = "MEMBER"
)

func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleMember
}

type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Verified     bool
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
