// internal/domain/auth/entity.go
package auth

import (
	"fmt"
	"time"
)

// Role is the closed set of privilege levels. Higher levels include lower ones.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

var roleLevels = map[Role]int{
	RoleUser:  1,
	RoleAdmin: 2,
}

// ParseRole maps a stored role name onto the enum.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleLevels[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Satisfies reports whether r is at least as privileged as required.
func (r Role) Satisfies(required Role) bool {
	have, ok := roleLevels[r]
	if !ok {
		return false
	}
	return have >= roleLevels[required]
}

// Authorities is the authority set the role grants for the duration of a request.
func (r Role) Authorities() []string {
	switch r {
	case RoleAdmin:
		return []string{"ROLE_USER", "ROLE_ADMIN"}
	case RoleUser:
		return []string{"ROLE_USER"}
	}
	return nil
}

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

// Identity represents a registered principal
type Identity struct {
	ID           string    `json:"id" db:"id"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Nickname     string    `json:"nickname" db:"nickname"`
	Phone        string    `json:"phone" db:"phone"`
	Email        string    `json:"email" db:"email"`
	Gender       string    `json:"gender" db:"gender"`
	AvatarURL    string    `json:"avatar_url" db:"avatar_url"`
	Seq          int64     `json:"seq" db:"seq"`
	Role         Role      `json:"role" db:"role"`
	Status       Status    `json:"status" db:"status"`
	ReportCount  int       `json:"report_count" db:"report_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ProfilePatch carries the mutable profile fields. Nil means unchanged.
type ProfilePatch struct {
	Nickname  *string
	Phone     *string
	Email     *string
	Gender    *string
	AvatarURL *string
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Nickname == nil && p.Phone == nil && p.Email == nil && p.Gender == nil && p.AvatarURL == nil
}
