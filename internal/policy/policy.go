// Package policy decides who may do what over users and plans.
//
// The decision functions are pure: they take the caller's identity and a
// descriptor of the resource and answer yes or no. Authorizer wraps them with
// the lookups and the error ordering the HTTP layer relies on: missing
// identity (401), missing identifier (400), unknown resource (404), denied
// (403).
package policy

import "devplan/internal/domain"

// UserScope tells a user listing what it may return.
type UserScope struct {
	All       bool
	ManagerID string
}

// ReadPlan reports whether id may read the plan described by plan.
func ReadPlan(id domain.Identity, plan domain.PlanOwnership) bool {
	switch id.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleManager:
		return plan.OwnerID == id.UserID || plan.OwnerReportsTo(id.UserID)
	case domain.RoleUser:
		return plan.OwnerID == id.UserID
	default:
		return false
	}
}

// AddFeedback follows the read rule: whoever can see a plan can comment on it.
func AddFeedback(id domain.Identity, plan domain.PlanOwnership) bool {
	return ReadPlan(id, plan)
}

// CreatePlanFor reports whether id may create a plan owned by target.
func CreatePlanFor(id domain.Identity, target *domain.User) bool {
	return AccessUser(id, target)
}

// AccessUser reports whether id may read or modify target.
func AccessUser(id domain.Identity, target *domain.User) bool {
	if target == nil {
		return false
	}
	switch id.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleManager:
		return target.ID == id.UserID || target.ReportsTo(id.UserID)
	case domain.RoleUser:
		return target.ID == id.UserID
	default:
		return false
	}
}

// ListUsers returns the scope of a user listing, or false when id may not
// list users at all.
func ListUsers(id domain.Identity) (UserScope, bool) {
	switch id.Role {
	case domain.RoleAdmin:
		return UserScope{All: true}, true
	case domain.RoleManager:
		return UserScope{ManagerID: id.UserID}, true
	default:
		return UserScope{}, false
	}
}

// ChangeActivation is reserved to administrators.
func ChangeActivation(id domain.Identity) bool {
	return id.Role == domain.RoleAdmin
}
