package authz

import (
	"context"
	"fmt"
)

// ReportsResolver resolves the set of user ids reporting to a lead
// through the team-membership chain.
type ReportsResolver interface {
	Reports(ctx context.Context, leadUserID string) (map[string]struct{}, error)
}

// MatrixSource supplies stored role-permission overrides.
type MatrixSource interface {
	StoredPermissionsFor(ctx context.Context, role Role) ([]Permission, bool, error)
}

// Gate decides, per request, whether an actor may perform an action.
// It consults the stored matrix first and falls back to the registry
// baseline; Admin is always allowed and cannot be restricted. Pure
// decision function: no side effects.
type Gate struct {
	registry *Registry
	source   MatrixSource
	resolver ReportsResolver
}

// NewGate constructs a Gate. resolver may be nil when no relationship
// requirements are ever evaluated.
func NewGate(registry *Registry, source MatrixSource, resolver ReportsResolver) *Gate {
	return &Gate{registry: registry, source: source, resolver: resolver}
}

// Authorize returns Allow or a typed Deny with a human-readable reason.
// The error return is reserved for infrastructure failures (storage,
// membership-graph configuration errors); a well-formed request never
// produces one.
func (g *Gate) Authorize(ctx context.Context, actor Actor, permission Permission, req *Requirement) (Decision, error) {
	if !actor.Authenticated() {
		return Deny("unauthenticated"), nil
	}
	if _, err := ParseRole(string(actor.Role)); err != nil {
		return Deny(fmt.Sprintf("unknown role %q", actor.Role)), nil
	}

	if actor.Role == RoleAdmin {
		return Allow(), nil
	}

	if !g.registry.Has(permission) {
		return Deny(fmt.Sprintf("unknown permission %q", permission)), nil
	}

	perms, ok, err := g.source.StoredPermissionsFor(ctx, actor.Role)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		perms = g.registry.DefaultsFor(actor.Role)
	}
	if !contains(perms, permission) {
		return Deny(fmt.Sprintf("role %s lacks permission %s", actor.Role, permission)), nil
	}

	if req != nil {
		return g.evaluateRequirement(ctx, actor, req)
	}
	return Allow(), nil
}

func (g *Gate) evaluateRequirement(ctx context.Context, actor Actor, req *Requirement) (Decision, error) {
	switch req.Kind {
	case RequireSelf:
		if actor.UserID == req.TargetUserID {
			return Allow(), nil
		}
		return Deny("target record belongs to another user"), nil
	case RequireLeadOf:
		if actor.UserID == req.TargetUserID {
			return Deny("cannot act on own record"), nil
		}
		if g.resolver == nil {
			return Deny("no reporting relationship configured"), nil
		}
		reports, err := g.resolver.Reports(ctx, actor.UserID)
		if err != nil {
			return Decision{}, err
		}
		if _, ok := reports[req.TargetUserID]; ok {
			return Allow(), nil
		}
		return Deny("target user does not report to actor"), nil
	default:
		return Deny(fmt.Sprintf("unknown relationship requirement %q", req.Kind)), nil
	}
}

func contains(perms []Permission, p Permission) bool {
	for _, candidate := range perms {
		if candidate == p {
			return true
		}
	}
	return false
}
