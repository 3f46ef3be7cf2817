package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fleet-dispatch/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the persistence contract for orders.
//
// InTx runs fn against a repository bound to a single database transaction:
// every read inside fn observes one consistent snapshot and every write
// commits atomically, or none do. All multi-entity mutations (order + driver
// flag, order + vehicle binding) must go through it.
type RepositoryInterface interface {
	InTx(ctx context.Context, fn func(RepositoryInterface) error) error

	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	// FindByIDForUpdate reads an order under a row lock so a concurrent
	// lifecycle transition cannot interleave. Only valid inside InTx.
	FindByIDForUpdate(ctx context.Context, orderID string) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, orderID string) error
	List(ctx context.Context, filter models.OrderListFilter) ([]models.Order, error)
	ListByDriver(ctx context.Context, driverID string) ([]models.Order, error)

	// CountActiveByDriver returns the number of in_progress orders assigned
	// to the driver. Driver availability is derived from this count.
	CountActiveByDriver(ctx context.Context, driverID string) (int, error)
	// CountActiveByVehicle returns the number of in_progress orders bound to
	// the vehicle.
	CountActiveByVehicle(ctx context.Context, vehicleID string) (int, error)

	// RefreshDriverAvailability recomputes the materialized availability flag
	// on the driver row from the committed set of in_progress orders. It is
	// the cache-invalidation hook fired by every lifecycle transition that
	// changes an assignment or reaches a terminal status.
	RefreshDriverAvailability(ctx context.Context, driverID string) error

	// FetchDriverNames and FetchVehicles load the referenced entities for the
	// read-side projections; the join itself happens in memory.
	FetchDriverNames(ctx context.Context, driverIDs []string) (map[string]string, error)
	FetchVehicles(ctx context.Context, vehicleIDs []string) (map[string]models.Vehicle, error)
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is the PostgreSQL implementation of RepositoryInterface.
type Repository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// NewRepository creates a new order repository on top of a connection pool.
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: pool, pool: pool}
}

// InTx starts a transaction and hands fn a repository bound to it. The
// transaction is rolled back unless fn returns nil and the commit succeeds.
// Nested calls reuse the already-open transaction.
func (r *Repository) InTx(ctx context.Context, fn func(RepositoryInterface) error) error {
	if r.pool == nil {
		return fn(r)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("repository.InTx begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(&Repository{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.InTx commit: %w", err)
	}
	return nil
}

const orderColumns = `
	id::text, order_number, load_details, pickup_address, delivery_address,
	status, assigned_driver::text, vehicle_id::text, estimated_delivery_time,
	created_at, updated_at`

// scanOrder reads one order row.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.LoadDetails,
		&o.PickupAddress,
		&o.DeliveryAddress,
		&o.Status,
		&o.AssignedDriver,
		&o.VehicleID,
		&o.EstimatedDeliveryTime,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &o, nil
}

// Create inserts a new order.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	query := `
		INSERT INTO orders (id, order_number, load_details, pickup_address, delivery_address,
		                    status, assigned_driver, vehicle_id, estimated_delivery_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + orderColumns

	row := r.db.QueryRow(ctx, query,
		order.ID,
		order.OrderNumber,
		order.LoadDetails,
		order.PickupAddress,
		order.DeliveryAddress,
		order.Status,
		order.AssignedDriver,
		order.VehicleID,
		order.EstimatedDeliveryTime,
	)
	created, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateOrder: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single order.
func (r *Repository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return order, nil
}

// FindByIDForUpdate retrieves a single order under FOR UPDATE.
func (r *Repository) FindByIDForUpdate(ctx context.Context, orderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByIDForUpdate: %w", err)
	}
	return order, nil
}

// Update persists the full mutable state of an order.
func (r *Repository) Update(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET order_number = $2,
		    load_details = $3,
		    pickup_address = $4,
		    delivery_address = $5,
		    status = $6,
		    assigned_driver = $7,
		    vehicle_id = $8,
		    estimated_delivery_time = $9,
		    updated_at = now()
		WHERE id = $1`

	cmd, err := r.db.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.LoadDetails,
		order.PickupAddress,
		order.DeliveryAddress,
		order.Status,
		order.AssignedDriver,
		order.VehicleID,
		order.EstimatedDeliveryTime,
	)
	if err != nil {
		return fmt.Errorf("repository.UpdateOrder: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes an order.
func (r *Repository) Delete(ctx context.Context, orderID string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("repository.DeleteOrder: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// List retrieves orders scoped by role. Dispatchers see everything, drivers
// see their own orders plus unassigned ones.
func (r *Repository) List(ctx context.Context, filter models.OrderListFilter) ([]models.Order, error) {
	var conds []string
	var args []any

	if filter.Role != models.RoleDispatcher {
		args = append(args, filter.DriverID)
		conds = append(conds, fmt.Sprintf("(assigned_driver = $%d OR assigned_driver IS NULL)", len(args)))
	}
	if filter.OnlyUnassignedVehicle {
		conds = append(conds, "vehicle_id IS NULL")
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository.ListOrders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// ListByDriver retrieves every order ever assigned to the driver, newest
// first. Used by the driver detail view.
func (r *Repository) ListByDriver(ctx context.Context, driverID string) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE assigned_driver = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, driverID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListByDriver: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order rows: %w", err)
	}
	return orders, nil
}

// CountActiveByDriver counts the driver's in_progress orders.
func (r *Repository) CountActiveByDriver(ctx context.Context, driverID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE assigned_driver = $1 AND status = 'in_progress'`,
		driverID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("repository.CountActiveByDriver: %w", err)
	}
	return n, nil
}

// CountActiveByVehicle counts the in_progress orders bound to a vehicle.
func (r *Repository) CountActiveByVehicle(ctx context.Context, vehicleID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE vehicle_id = $1 AND status = 'in_progress'`,
		vehicleID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("repository.CountActiveByVehicle: %w", err)
	}
	return n, nil
}

// RefreshDriverAvailability recomputes the cached availability flag from the
// in_progress orders visible to the current transaction.
func (r *Repository) RefreshDriverAvailability(ctx context.Context, driverID string) error {
	query := `
		UPDATE users
		SET availability = NOT EXISTS (
		        SELECT 1 FROM orders
		        WHERE assigned_driver = $1 AND status = 'in_progress'
		    ),
		    updated_at = now()
		WHERE id = $1 AND role = 'driver'`

	if _, err := r.db.Exec(ctx, query, driverID); err != nil {
		return fmt.Errorf("repository.RefreshDriverAvailability: %w", err)
	}
	return nil
}

// FetchDriverNames resolves driver ids to display names.
func (r *Repository) FetchDriverNames(ctx context.Context, driverIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(driverIDs))
	if len(driverIDs) == 0 {
		return names, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id::text, name FROM users WHERE id = ANY($1)`, driverIDs)
	if err != nil {
		return nil, fmt.Errorf("repository.FetchDriverNames: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("repository.FetchDriverNames scan: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.FetchDriverNames rows: %w", err)
	}
	return names, nil
}

// FetchVehicles resolves vehicle ids to vehicles.
func (r *Repository) FetchVehicles(ctx context.Context, vehicleIDs []string) (map[string]models.Vehicle, error) {
	vehicles := make(map[string]models.Vehicle, len(vehicleIDs))
	if len(vehicleIDs) == 0 {
		return vehicles, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id::text, license_plate, model, brand, year, capacity,
		       current_location, maintenance_schedule, created_at, updated_at
		FROM vehicles
		WHERE id = ANY($1)`, vehicleIDs)
	if err != nil {
		return nil, fmt.Errorf("repository.FetchVehicles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v models.Vehicle
		err := rows.Scan(&v.ID, &v.LicensePlate, &v.Model, &v.Brand, &v.Year,
			&v.Capacity, &v.CurrentLocation, &v.MaintenanceSchedule, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository.FetchVehicles scan: %w", err)
		}
		vehicles[v.ID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.FetchVehicles rows: %w", err)
	}
	return vehicles, nil
}
