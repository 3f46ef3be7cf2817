package models

import "errors"

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden is returned when the acting user's role or ownership does
	// not permit the attempted action. Authorization fails closed: unknown
	// users and unknown actions surface this same error.
	ErrForbidden = errors.New("unauthorized action")

	// ErrConflict is returned when a unique constraint would be violated,
	// e.g. signing up with an email address that is already registered.
	ErrConflict = errors.New("resource already exists")

	// ErrInvalidCredentials is returned on login when the email is unknown or
	// the password does not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrMissingFields is returned when a request omits required fields.
	ErrMissingFields = errors.New("missing required fields")

	// ErrOrderNotAcceptable is returned when a driver tries to accept an
	// order that is not in the 'created' status.
	ErrOrderNotAcceptable = errors.New("only orders with status 'created' can be accepted")

	// ErrOrderNotCancellable is returned when an order is already in a
	// terminal status and can no longer be cancelled.
	ErrOrderNotCancellable = errors.New("order cannot be cancelled")

	// ErrOrderNotCompletable is returned when an order is not in progress and
	// therefore cannot be completed.
	ErrOrderNotCompletable = errors.New("only orders in progress can be completed")

	// ErrOrderNotAssignable is returned when a driver or vehicle binding is
	// attempted on an order that already reached a terminal status.
	ErrOrderNotAssignable = errors.New("order is in a terminal status and cannot be assigned")

	// ErrInvalidLoadDetails is returned when load weight or any dimension is
	// zero or negative.
	ErrInvalidLoadDetails = errors.New("negative or zero values are not allowed in load details")

	// ErrNotADriver is returned when an operation targets a user that does
	// not have the driver role, e.g. assigning an order to a dispatcher.
	ErrNotADriver = errors.New("target user is not a driver")

	// ErrDriverUnavailable is returned when a driver already has an active
	// order and cannot take on another assignment.
	ErrDriverUnavailable = errors.New("driver already has an active order")

	// ErrVehicleInUse is returned when a vehicle is already bound to another
	// active order.
	ErrVehicleInUse = errors.New("vehicle is already assigned to an active order")
)

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}
