package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Capability names an action guarded at the authorization boundary.
type Capability int

const (
	CapNominate Capability = iota
	CapViewOwnProfile
	CapListUsers
	CapAssignRole
	CapReviewApplications
)

// ParseRole converts user input into a Role; unknown values are rejected.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q: %w", s, ErrBadRequest)
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleUser:
		switch c {
		case CapNominate, CapViewOwnProfile:
			return true
		case CapListUsers, CapAssignRole, CapReviewApplications:
			return false
		}
	}
	return false
}
