package users

import (
	"context"
	"errors"
	"fmt"

	"fleet-dispatch/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the persistence contract for user accounts.
// The availability column is deliberately absent from Create/Update paths:
// only the availability refresh hook in the orders repository writes it.
type RepositoryInterface interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListDrivers(ctx context.Context, sort string, availableOnly bool) ([]models.User, error)
}

// Repository implements RepositoryInterface on PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new user repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const userColumns = `
	id::text, name, email, password_hash, role,
	COALESCE(phone, ''), COALESCE(license_number, ''),
	availability, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Phone,
		&u.LicenseNumber,
		&u.Availability,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// Create inserts a new account. Drivers start available, dispatchers carry no
// availability at all.
func (r *Repository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, phone, license_number, availability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns

	row := r.db.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Phone,
		user.LicenseNumber,
		user.Availability,
	)
	created, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateUser: %w", err)
	}
	return created, nil
}

// FindByID retrieves a user by id.
func (r *Repository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return user, nil
}

// FindByEmail retrieves a user by their unique email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByEmail: %w", err)
	}
	return user, nil
}

// driverSortColumns whitelists the sortable columns of the driver listing.
var driverSortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
}

// ListDrivers retrieves driver accounts, optionally narrowed to the ones the
// materialized availability cache marks free.
func (r *Repository) ListDrivers(ctx context.Context, sort string, availableOnly bool) ([]models.User, error) {
	column, ok := driverSortColumns[sort]
	if !ok {
		column = "created_at"
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE role = 'driver'`
	if availableOnly {
		query += ` AND availability IS NOT FALSE`
	}
	query += ` ORDER BY ` + column

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository.ListDrivers: %w", err)
	}
	defer rows.Close()

	var drivers []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListDrivers scan: %w", err)
		}
		drivers = append(drivers, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListDrivers rows: %w", err)
	}
	return drivers, nil
}
