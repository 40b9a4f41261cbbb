// Package domain provides the transition guard: the pure rule deciding
// whether a role may move a lead along a configured status edge.
package domain

import (
	dirdomain "github.com/niketshah083/lead-management-backend-sub002/internal/directory/domain"

	"github.com/google/uuid"
)

// Edge is the evaluated view of a configured status transition.
type Edge struct {
	FromStatusID    uuid.UUID
	ToStatusID      uuid.UUID
	IsActive        bool
	RequiresComment bool
	// AllowedRoles is nil when the edge carries no role restriction.
	AllowedRoles dirdomain.RoleSet
}

// Decision is the outcome of evaluating one edge for an acting role.
type Decision struct {
	Allowed         bool
	RequiresComment bool
}

// Decide applies the role gate for a single edge.
//
// An absent edge denies the move outright. An inactive edge denies the move
// but still mirrors its comment flag, so callers can report the edge's
// requirements consistently. An active edge allows the move when the acting
// role passes the (possibly unrestricted) role set.
func Decide(edge *Edge, actingRole dirdomain.Role) Decision {
	if edge == nil {
		return Decision{}
	}

	decision := Decision{RequiresComment: edge.RequiresComment}
	if !edge.IsActive {
		return decision
	}

	decision.Allowed = edge.AllowedRoles.Allows(actingRole)
	return decision
}
