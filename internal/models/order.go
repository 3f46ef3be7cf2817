package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusCreated    OrderStatus = "created"
	StatusInProgress OrderStatus = "in_progress"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Dimensions describes a load or cargo hold in three dimensions.
// All values are positive.
type Dimensions struct {
	Length float64 `json:"length" validate:"required,gt=0"`
	Width  float64 `json:"width" validate:"required,gt=0"`
	Height float64 `json:"height" validate:"required,gt=0"`
}

// LoadDetails describes the cargo of an order.
type LoadDetails struct {
	Type       string     `json:"type" validate:"required"`
	Weight     float64    `json:"weight" validate:"required,gt=0"`
	Dimensions Dimensions `json:"dimensions" validate:"required"`
}

// Address is a structured postal address used for pickup and delivery stops.
type Address struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	ZipCode string `json:"zip_code" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// Order represents a delivery order.
//
// AssignedDriver must reference a user with the driver role and VehicleID an
// existing vehicle; both are nullable back-references, the forward lists are
// always computed by join at query time.
type Order struct {
	ID                    string      `json:"id" db:"id"`
	OrderNumber           string      `json:"order_number" db:"order_number"`
	LoadDetails           LoadDetails `json:"load_details" db:"load_details"`
	PickupAddress         Address     `json:"pickup_address" db:"pickup_address"`
	DeliveryAddress       Address     `json:"delivery_address" db:"delivery_address"`
	Status                OrderStatus `json:"status" db:"status"`
	AssignedDriver        *string     `json:"assigned_driver" db:"assigned_driver"`
	VehicleID             *string     `json:"vehicle_id" db:"vehicle_id"`
	EstimatedDeliveryTime *time.Time  `json:"estimated_delivery_time" db:"estimated_delivery_time"`
	CreatedAt             time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at" db:"updated_at"`
}

// CreateOrderRequest is the body for creating a new order.
// Driver, vehicle and ETA are optional at creation time.
type CreateOrderRequest struct {
	OrderNumber           string      `json:"order_number" validate:"required"`
	LoadDetails           LoadDetails `json:"load_details" validate:"required"`
	PickupAddress         Address     `json:"pickup_address" validate:"required"`
	DeliveryAddress       Address     `json:"delivery_address" validate:"required"`
	VehicleID             *string     `json:"vehicle_id,omitempty"`
	AssignedDriver        *string     `json:"assigned_driver,omitempty"`
	EstimatedDeliveryTime *time.Time  `json:"estimated_delivery_time,omitempty"`
}

// UpdateOrderRequest is a partial patch applied by a dispatcher. Assignment
// and status never travel through this request: AssignedDriver, VehicleID and
// Status of the stored order are preserved, only the dedicated assignment
// operations change them.
type UpdateOrderRequest struct {
	OrderNumber           *string      `json:"order_number,omitempty"`
	LoadDetails           *LoadDetails `json:"load_details,omitempty"`
	PickupAddress         *Address     `json:"pickup_address,omitempty"`
	DeliveryAddress       *Address     `json:"delivery_address,omitempty"`
	EstimatedDeliveryTime *time.Time   `json:"estimated_delivery_time,omitempty"`
}

// AssignDriverRequest is the body for binding a driver to an order.
type AssignDriverRequest struct {
	DriverID string `json:"driver_id" validate:"required"`
}

// AssignVehicleRequest is the body for binding a vehicle to an order.
type AssignVehicleRequest struct {
	VehicleID string `json:"vehicle_id" validate:"required"`
}

// NoVehicleAssigned is the sentinel shown in order views when no vehicle is
// bound to the order.
const NoVehicleAssigned = "No Vehicle Assigned"

// OrderView is an order enriched for display with a driver name and a
// formatted vehicle descriptor, so clients need no second round trip.
type OrderView struct {
	Order
	DriverInfo  string `json:"driver_info,omitempty"`
	VehicleInfo string `json:"vehicle_info"`
}

// OrderListFilter scopes the order listing. Dispatchers see every order,
// drivers see their own plus unassigned ones. OnlyUnassignedVehicle narrows
// to orders with no vehicle bound yet.
type OrderListFilter struct {
	Role                  string
	DriverID              string
	OnlyUnassignedVehicle bool
	SortByStatusPriority  bool
}
