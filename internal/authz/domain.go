package authz

import (
	"errors"
	"fmt"
)

// Role is the closed set of platform roles. Role values arrive as claims
// from the identity provider and are validated at the boundary.
type Role string

const (
	RoleAdmin       Role = "Admin"
	RoleSubAdmin    Role = "Sub-Admin"
	RoleHR          Role = "HR"
	RoleTeamLead    Role = "Team Lead"
	RoleEmployee    Role = "Employee"
	RoleBusinessDev Role = "Business Development"
)

// ErrUnknownRole indicates a role value outside the closed set.
var ErrUnknownRole = errors.New("authz: unknown role")

// AllRoles lists every valid role, Admin first.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleSubAdmin, RoleHR, RoleTeamLead, RoleEmployee, RoleBusinessDev}
}

// ParseRole validates a raw role claim.
func ParseRole(raw string) (Role, error) {
	for _, role := range AllRoles() {
		if string(role) == raw {
			return role, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
}

// Permission is a named capability drawn from the static catalog.
type Permission string

// Actor describes the authenticated identity performing an action.
// Immutable per request; sourced from the session claims.
type Actor struct {
	UserID string
	Role   Role
}

// Authenticated reports whether the actor carries a usable identity.
func (a Actor) Authenticated() bool {
	return a.UserID != "" && a.Role != ""
}

// RequirementKind enumerates relationship requirements an authorization
// check may carry in addition to the role permission.
type RequirementKind string

const (
	// RequireSelf demands the actor be the target user.
	RequireSelf RequirementKind = "self"
	// RequireLeadOf demands the target user resolve to the actor through
	// the team-membership reporting chain. Never satisfied by the actor
	// themselves.
	RequireLeadOf RequirementKind = "lead-of"
)

// Requirement pairs a relationship kind with the target user.
type Requirement struct {
	Kind         RequirementKind
	TargetUserID string
}

// Self builds a self requirement.
func Self(targetUserID string) *Requirement {
	return &Requirement{Kind: RequireSelf, TargetUserID: targetUserID}
}

// LeadOf builds a reporting-chain requirement.
func LeadOf(targetUserID string) *Requirement {
	return &Requirement{Kind: RequireLeadOf, TargetUserID: targetUserID}
}

// Decision is the typed outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny builds a negative decision with a human-readable reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}
