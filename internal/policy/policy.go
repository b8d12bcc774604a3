// Package policy holds the authorization predicates consulted before every
// mutation. Every function is pure and total: it never touches storage and
// returns a decision for any input, including a nil actor.
package policy

import (
	"connectaid/internal/domain"
)

func CanAccept(actor *domain.User, req *domain.ServiceRequest) bool {
	if actor == nil || req == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleVolunteer:
		return req.Status == domain.StatusOpen && req.CreatedBy != actor.ID
	case domain.RoleAdmin, domain.RoleCitizen:
		return false
	default:
		return false
	}
}

func CanEdit(actor *domain.User, req *domain.ServiceRequest) bool {
	if actor == nil || req == nil {
		return false
	}
	return req.CreatedBy == actor.ID
}

func CanUpdateStatus(actor *domain.User, req *domain.ServiceRequest) bool {
	if actor == nil || req == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleVolunteer, domain.RoleCitizen:
		return req.IsAssignee(actor.ID)
	default:
		return false
	}
}

func CanDelete(actor *domain.User, req *domain.ServiceRequest) bool {
	if actor == nil || req == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleVolunteer, domain.RoleCitizen:
		return CanEdit(actor, req) && req.Status == domain.StatusOpen
	default:
		return false
	}
}

func CanView(actor *domain.User, req *domain.ServiceRequest) bool {
	if actor == nil || req == nil {
		return false
	}
	if req.CreatedBy == actor.ID {
		return true
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleVolunteer:
		return req.Status == domain.StatusOpen || req.IsAssignee(actor.ID)
	case domain.RoleCitizen:
		return false
	default:
		return false
	}
}

func CanLeaveFeedback(actor *domain.User, req *domain.ServiceRequest) bool {
	if actor == nil || req == nil {
		return false
	}
	if req.Status != domain.StatusCompleted {
		return false
	}
	return req.CreatedBy == actor.ID || req.IsAssignee(actor.ID)
}

func CanDeleteFeedback(actor *domain.User, fb *domain.Feedback) bool {
	if actor == nil || fb == nil {
		return false
	}
	return actor.Role == domain.RoleAdmin || fb.FromUser == actor.ID
}

// CanDeactivate guards account deactivation: only admins may deactivate,
// never themselves and never another admin.
func CanDeactivate(actor, target *domain.User) bool {
	if actor == nil || target == nil {
		return false
	}
	if actor.Role != domain.RoleAdmin {
		return false
	}
	if actor.ID == target.ID {
		return false
	}
	return target.Role != domain.RoleAdmin
}

// CanChangeRole applies the same self-protection as CanDeactivate: an admin
// cannot demote itself or another admin.
func CanChangeRole(actor, target *domain.User) bool {
	return CanDeactivate(actor, target)
}

// VisibilityFor returns the list filter for actor. An explicit status
// narrows the role's default view rather than widening it.
func VisibilityFor(actor *domain.User, status *domain.RequestStatus, reqType *domain.RequestType) (domain.RequestFilter, bool) {
	filter := domain.RequestFilter{Status: status, Type: reqType}
	if actor == nil {
		return filter, false
	}

	switch actor.Role {
	case domain.RoleAdmin:
		return filter, true
	case domain.RoleCitizen:
		id := actor.ID
		filter.CreatedBy = &id
		return filter, true
	case domain.RoleVolunteer:
		id := actor.ID
		filter.VolunteerID = &id
		return filter, true
	default:
		return filter, false
	}
}
