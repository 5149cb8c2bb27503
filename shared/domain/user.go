package domain

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// Satisfies compares r with the required role by exact match.
// There is no hierarchy: admin does not satisfy a user-only requirement.
func (r Role) Satisfies(required Role) bool {
	return r.IsValid() && r == required
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role %q: must be 'admin' or 'user'", s)
	}
	return r, nil
}

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusActive
}

// Identity is a registered principal.
type Identity struct {
	Id          UserId      `json:"id"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	PhoneNumber string      `json:"phone_number"`
	Username    Username    `json:"username"`
	PassHash    string      `json:"-"`
	Dob         time.Time   `json:"dob"`
	HasPic      bool        `json:"has_profile_pic"`
	Role        Role        `json:"role"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	EventDates  []EventDate `json:"other_dates,omitempty"`
}

func (i Identity) IsPending() bool {
	return i.Status == StatusPending
}

// IdentityCreationData holds everything needed to persist a new identity.
type IdentityCreationData struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Username    Username
	PassHash    string
	Dob         time.Time
	ProfilePic  []byte
	Role        Role
	Status      Status
	EventDates  []EventDateCreationData
}

// Selector picks an identity either by id or by username. Id wins when both are set.
type Selector struct {
	UserId   UserId
	Username Username
}

func (s Selector) IsEmpty() bool {
	return s.UserId == 0 && s.Username == ""
}

func (s Selector) String() string {
	if s.UserId != 0 {
		return fmt.Sprintf("id=%d", s.UserId)
	}
	return "username=" + s.Username
}

// IdentityFilter narrows identity listings. Zero values match everything.
type IdentityFilter struct {
	Role   Role
	Status Status
}
