package models

import "time"

// User roles. Role is fixed at signup and never changes afterwards.
const (
	RoleDriver     = "driver"
	RoleDispatcher = "dispatcher"
)

// User represents an account in the system, either a driver or a dispatcher.
//
// Availability is meaningful only for drivers and is owned by the
// availability resolver: it mirrors "this driver has no order in progress"
// and is never written from client-supplied payloads.
type User struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	Role          string    `json:"role" db:"role"`
	Phone         string    `json:"phone,omitempty" db:"phone"`
	LicenseNumber string    `json:"license_number,omitempty" db:"license_number"`
	Availability  *bool     `json:"availability,omitempty" db:"availability"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// SignupRequest is the body for creating a new account.
// Phone and license number are required for drivers only; the service
// enforces that rule because validator tags cannot express it across fields.
type SignupRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	Role          string `json:"role" validate:"required,oneof=driver dispatcher"`
	Phone         string `json:"phone,omitempty" validate:"omitempty,numeric,len=9"`
	LicenseNumber string `json:"license_number,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// DriverView is the list item returned by the driver listing: the account
// fields plus availability derived from the committed set of active orders.
type DriverView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	LicenseNumber string    `json:"license_number,omitempty"`
	Available     bool      `json:"available"`
	CreatedAt     time.Time `json:"created_at"`
}

// DriverDetailView joins a driver with their current in-progress order (and
// its vehicle) and the history of finished orders. The credential hash is
// never part of this view.
type DriverDetailView struct {
	Driver       DriverView  `json:"driver"`
	CurrentOrder *OrderView  `json:"current_order,omitempty"`
	OrderHistory []OrderView `json:"order_history"`
}
