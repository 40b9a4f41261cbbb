// Package visibility decides which leads an actor may observe or act on.
// The rules depend only on the actor's role, the reporting tree and the
// actor's category assignments; the filter itself stores nothing.
package visibility

import (
	"context"

	dirdomain "github.com/niketshah083/lead-management-backend-sub002/internal/directory/domain"
	"github.com/niketshah083/lead-management-backend-sub002/platform/apperr"

	"github.com/google/uuid"
)

// DirectoryReader is the slice of the directory the filter consults.
type DirectoryReader interface {
	ListDirectReportIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error)
	ListUserCategoryIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// Actor identifies the user a check runs on behalf of.
type Actor struct {
	ID   uuid.UUID
	Role dirdomain.Role
}

// LeadView carries the two lead fields visibility depends on.
type LeadView struct {
	AssignedToID *uuid.UUID
	CategoryID   *uuid.UUID
}

// Scope is the listing predicate for an actor. When All is set the other
// fields are meaningless. Otherwise a lead matches when its assignee is in
// UserIDs, or it is unassigned and either IncludeUnassigned is set with no
// category restriction (CategoryIDs nil) or its category is in CategoryIDs.
type Scope struct {
	All               bool
	UserIDs           []uuid.UUID
	IncludeUnassigned bool
	CategoryIDs       []uuid.UUID
}

// Filter evaluates visibility rules against the directory.
type Filter struct {
	directory DirectoryReader
}

// New creates a visibility filter.
func New(directory DirectoryReader) *Filter {
	return &Filter{directory: directory}
}

// IsVisible reports whether the actor may see the lead.
//
// Admins see everything. Managers see unassigned leads, their own leads and
// leads assigned to their direct reports; the tree is not walked
// transitively. Executives see their own leads, plus unassigned leads whose
// category is among their assignments.
func (f *Filter) IsVisible(ctx context.Context, actor Actor, lead LeadView) (bool, error) {
	switch actor.Role {
	case dirdomain.RoleAdmin:
		return true, nil

	case dirdomain.RoleManager:
		if lead.AssignedToID == nil || *lead.AssignedToID == actor.ID {
			return true, nil
		}
		reports, err := f.directory.ListDirectReportIDs(ctx, actor.ID)
		if err != nil {
			return false, err
		}
		for _, id := range reports {
			if id == *lead.AssignedToID {
				return true, nil
			}
		}
		return false, nil

	case dirdomain.RoleExecutive:
		if lead.AssignedToID != nil {
			return *lead.AssignedToID == actor.ID, nil
		}
		if lead.CategoryID == nil {
			return false, nil
		}
		categories, err := f.directory.ListUserCategoryIDs(ctx, actor.ID)
		if err != nil {
			return false, err
		}
		for _, id := range categories {
			if id == *lead.CategoryID {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, apperr.Forbidden("unknown role")
	}
}

// ScopeFor builds the listing predicate for the actor, evaluated by the
// storage layer so bulk listings filter server side.
func (f *Filter) ScopeFor(ctx context.Context, actor Actor) (Scope, error) {
	switch actor.Role {
	case dirdomain.RoleAdmin:
		return Scope{All: true}, nil

	case dirdomain.RoleManager:
		reports, err := f.directory.ListDirectReportIDs(ctx, actor.ID)
		if err != nil {
			return Scope{}, err
		}
		return Scope{
			UserIDs:           append([]uuid.UUID{actor.ID}, reports...),
			IncludeUnassigned: true,
		}, nil

	case dirdomain.RoleExecutive:
		categories, err := f.directory.ListUserCategoryIDs(ctx, actor.ID)
		if err != nil {
			return Scope{}, err
		}
		return Scope{
			UserIDs:           []uuid.UUID{actor.ID},
			IncludeUnassigned: len(categories) > 0,
			CategoryIDs:       categories,
		}, nil

	default:
		return Scope{}, apperr.Forbidden("unknown role")
	}
}
