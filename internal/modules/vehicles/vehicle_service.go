package vehicles

import (
	"context"
	"fmt"

	"fleet-dispatch/internal/models"

	"github.com/google/uuid"
)

// ServiceInterface defines fleet business logic.
type ServiceInterface interface {
	RegisterVehicle(ctx context.Context, req models.RegisterVehicleRequest) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, filter models.VehicleListFilter) ([]models.VehicleView, error)
	GetVehicle(ctx context.Context, vehicleID string) (*models.Vehicle, error)
}

// Service implements the fleet logic.
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new vehicle service.
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// RegisterVehicle adds a vehicle to the fleet. Capacity must be positive in
// weight and every hold dimension.
func (s *Service) RegisterVehicle(ctx context.Context, req models.RegisterVehicleRequest) (*models.Vehicle, error) {
	cap := req.Capacity
	if cap.Weight <= 0 || cap.Volume.Length <= 0 || cap.Volume.Width <= 0 || cap.Volume.Height <= 0 {
		return nil, models.ErrInvalidLoadDetails
	}

	vehicle := &models.Vehicle{
		ID:                  uuid.NewString(),
		LicensePlate:        req.LicensePlate,
		Model:               req.Model,
		Brand:               req.Brand,
		Year:                req.Year,
		Capacity:            req.Capacity,
		CurrentLocation:     req.CurrentLocation,
		MaintenanceSchedule: req.MaintenanceSchedule,
	}

	created, err := s.repo.Create(ctx, vehicle)
	if err != nil {
		return nil, fmt.Errorf("service.RegisterVehicle: %w", err)
	}
	return created, nil
}

// ListVehicles returns the fleet with the derived in-use flag.
func (s *Service) ListVehicles(ctx context.Context, filter models.VehicleListFilter) ([]models.VehicleView, error) {
	views, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.ListVehicles: %w", err)
	}
	return views, nil
}

// GetVehicle retrieves a single vehicle.
func (s *Service) GetVehicle(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("service.GetVehicle: %w", err)
	}
	return vehicle, nil
}
