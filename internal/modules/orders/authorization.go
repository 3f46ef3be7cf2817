package orders

import (
	"context"
	"log"

	"fleet-dispatch/internal/models"
)

// Action enumerates every operation the authorization engine can decide on.
type Action string

const (
	ActionAccept        Action = "accept"
	ActionCancel        Action = "cancel"
	ActionComplete      Action = "complete"
	ActionCreate        Action = "create"
	ActionDelete        Action = "delete"
	ActionUpdate        Action = "update"
	ActionAssignDriver  Action = "assign-driver"
	ActionAssignVehicle Action = "assign-vehicle"
	ActionViewAll       Action = "view-all"
	ActionViewOwn       Action = "view-own"
)

// UserLoader is the slice of the user repository the authorization engine
// needs: resolving an acting user id to a stored account.
type UserLoader interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
}

// Authorizer decides whether a (user, action, order) triple is permitted.
// It is side-effect free and fails closed: a missing user, a lookup failure
// or an unrecognized action all deny.
type Authorizer struct {
	users UserLoader
}

// NewAuthorizer creates an authorizer backed by the given user lookup.
func NewAuthorizer(users UserLoader) *Authorizer {
	return &Authorizer{users: users}
}

// Authorize implements the policy table. The order may be nil for actions
// that do not target an existing order (create, view-all, view-own).
//
//	accept                         driver
//	cancel                         driver owning the order
//	complete/create/delete/update/
//	assign-driver/assign-vehicle/
//	view-all                       dispatcher
//	view-own                       driver
//	anything else                  denied
func (a *Authorizer) Authorize(ctx context.Context, order *models.Order, action Action, actingUserID string) bool {
	user, err := a.users.FindByID(ctx, actingUserID)
	if err != nil || user == nil {
		log.Printf("authorization: could not resolve user %s: %v", actingUserID, err)
		return false
	}

	switch action {
	case ActionAccept:
		return user.Role == models.RoleDriver

	case ActionCancel:
		return user.Role == models.RoleDriver &&
			order != nil &&
			order.AssignedDriver != nil &&
			*order.AssignedDriver == actingUserID

	case ActionComplete, ActionCreate, ActionDelete, ActionUpdate,
		ActionAssignDriver, ActionAssignVehicle, ActionViewAll:
		return user.Role == models.RoleDispatcher

	case ActionViewOwn:
		return user.Role == models.RoleDriver

	default:
		log.Printf("authorization: unknown action %q", action)
		return false
	}
}
