package orders

import (
	"fmt"

	"fleet-dispatch/internal/models"
)

// allowedTransitions is the order lifecycle as a directed graph:
//
//	created ──> in_progress ──> completed
//	   │             │
//	   └─────────────┴────────> cancelled
//
// completed and cancelled are terminal. Reassignment keeps an order in
// in_progress, which the self-transition below allows.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusCreated:    {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress: {models.StatusInProgress, models.StatusCompleted, models.StatusCancelled},
	models.StatusCompleted:  {},
	models.StatusCancelled:  {},
}

// CanTransition reports whether from -> to is a permitted lifecycle move.
// Unknown statuses permit nothing.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a descriptive error when from -> to is not
// permitted.
func ValidateTransition(from, to models.OrderStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid order status transition: %s -> %s", from, to)
	}
	return nil
}
