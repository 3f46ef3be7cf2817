package vehicles

import (
	"context"
	"errors"
	"fmt"

	"fleet-dispatch/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the persistence contract for the fleet.
type RepositoryInterface interface {
	Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	FindByID(ctx context.Context, vehicleID string) (*models.Vehicle, error)
	// List returns vehicles with the derived in-use flag: true iff at least
	// one in_progress order references the vehicle.
	List(ctx context.Context, filter models.VehicleListFilter) ([]models.VehicleView, error)
}

// Repository implements RepositoryInterface on PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new vehicle repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const vehicleColumns = `
	id::text, license_plate, model, brand, year, capacity,
	current_location, maintenance_schedule, created_at, updated_at`

func scanVehicle(row pgx.Row) (*models.Vehicle, error) {
	var v models.Vehicle
	err := row.Scan(
		&v.ID,
		&v.LicensePlate,
		&v.Model,
		&v.Brand,
		&v.Year,
		&v.Capacity,
		&v.CurrentLocation,
		&v.MaintenanceSchedule,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan vehicle: %w", err)
	}
	return &v, nil
}

// Create inserts a new fleet vehicle.
func (r *Repository) Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	query := `
		INSERT INTO vehicles (id, license_plate, model, brand, year, capacity,
		                      current_location, maintenance_schedule)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + vehicleColumns

	row := r.db.QueryRow(ctx, query,
		vehicle.ID,
		vehicle.LicensePlate,
		vehicle.Model,
		vehicle.Brand,
		vehicle.Year,
		vehicle.Capacity,
		vehicle.CurrentLocation,
		vehicle.MaintenanceSchedule,
	)
	created, err := scanVehicle(row)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateVehicle: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single vehicle.
func (r *Repository) FindByID(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	vehicle, err := scanVehicle(r.db.QueryRow(ctx, query, vehicleID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return vehicle, nil
}

// vehicleSortColumns whitelists the sortable columns of the fleet listing.
var vehicleSortColumns = map[string]string{
	"created_at":    "v.created_at",
	"brand":         "v.brand",
	"model":         "v.model",
	"year":          "v.year",
	"license_plate": "v.license_plate",
}

// List retrieves the fleet joined with the active orders that make a vehicle
// "in use".
func (r *Repository) List(ctx context.Context, filter models.VehicleListFilter) ([]models.VehicleView, error) {
	column, ok := vehicleSortColumns[filter.Sort]
	if !ok {
		column = "v.created_at"
	}

	query := `
		SELECT v.id::text, v.license_plate, v.model, v.brand, v.year, v.capacity,
		       v.current_location, v.maintenance_schedule, v.created_at, v.updated_at,
		       EXISTS (
		           SELECT 1 FROM orders o
		           WHERE o.vehicle_id = v.id AND o.status = 'in_progress'
		       ) AS is_in_use
		FROM vehicles v`
	if filter.AvailableOnly {
		query += `
		WHERE NOT EXISTS (
		    SELECT 1 FROM orders o
		    WHERE o.vehicle_id = v.id AND o.status = 'in_progress'
		)`
	}
	query += ` ORDER BY ` + column

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository.ListVehicles: %w", err)
	}
	defer rows.Close()

	var views []models.VehicleView
	for rows.Next() {
		var view models.VehicleView
		err := rows.Scan(
			&view.ID,
			&view.LicensePlate,
			&view.Model,
			&view.Brand,
			&view.Year,
			&view.Capacity,
			&view.CurrentLocation,
			&view.MaintenanceSchedule,
			&view.CreatedAt,
			&view.UpdatedAt,
			&view.IsInUse,
		)
		if err != nil {
			return nil, fmt.Errorf("repository.ListVehicles scan: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListVehicles rows: %w", err)
	}
	return views, nil
}
