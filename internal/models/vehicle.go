package models

import "time"

// Capacity describes how much a vehicle can carry: a weight limit plus the
// cargo hold's dimensions.
type Capacity struct {
	Weight float64    `json:"weight" validate:"required,gt=0"`
	Volume Dimensions `json:"volume" validate:"required"`
}

// Location is a lat/long pair reported for a vehicle. It is stored as-is;
// there is no live tracking around it.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"required"`
	Longitude float64 `json:"longitude" validate:"required"`
}

// ServiceRecord is one entry of a vehicle's maintenance schedule.
type ServiceRecord struct {
	ServiceType string    `json:"service_type" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	Description string    `json:"description,omitempty"`
}

// Vehicle represents a fleet vehicle. Whether it is in use is not stored:
// it is derived from the orders currently referencing it.
type Vehicle struct {
	ID                  string          `json:"id" db:"id"`
	LicensePlate        string          `json:"license_plate" db:"license_plate"`
	Model               string          `json:"model" db:"model"`
	Brand               string          `json:"brand" db:"brand"`
	Year                int             `json:"year" db:"year"`
	Capacity            Capacity        `json:"capacity" db:"capacity"`
	CurrentLocation     Location        `json:"current_location" db:"current_location"`
	MaintenanceSchedule []ServiceRecord `json:"maintenance_schedule" db:"maintenance_schedule"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// RegisterVehicleRequest is the body for adding a vehicle to the fleet.
type RegisterVehicleRequest struct {
	LicensePlate        string          `json:"license_plate" validate:"required"`
	Model               string          `json:"model" validate:"required"`
	Brand               string          `json:"brand" validate:"required"`
	Year                int             `json:"year" validate:"omitempty,gte=1950"`
	Capacity            Capacity        `json:"capacity" validate:"required"`
	CurrentLocation     Location        `json:"current_location" validate:"required"`
	MaintenanceSchedule []ServiceRecord `json:"maintenance_schedule,omitempty" validate:"omitempty,dive"`
}

// VehicleView is a vehicle enriched with the derived in-use flag.
type VehicleView struct {
	Vehicle
	IsInUse bool `json:"is_in_use"`
}

// VehicleListFilter scopes the vehicle listing.
type VehicleListFilter struct {
	Sort          string
	AvailableOnly bool
}
