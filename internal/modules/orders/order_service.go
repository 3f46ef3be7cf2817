package orders

import (
	"context"
	"fmt"
	"time"

	"fleet-dispatch/internal/models"

	"github.com/google/uuid"
)

// ServiceInterface defines the order lifecycle and assignment operations.
// Every mutating operation takes the caller's identity, runs the
// authorization engine first, and performs its writes in one transaction.
type ServiceInterface interface {
	CreateOrder(ctx context.Context, dispatcherID string, req models.CreateOrderRequest) (*models.Order, error)
	AcceptOrder(ctx context.Context, orderID, driverID string) (*models.Order, error)
	CancelOrder(ctx context.Context, orderID, driverID string) (*models.Order, error)
	CompleteOrder(ctx context.Context, orderID, dispatcherID string) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID, dispatcherID string) error
	AssignDriver(ctx context.Context, orderID, driverID, dispatcherID string) (*models.OrderView, error)
	AssignVehicle(ctx context.Context, orderID, vehicleID, dispatcherID string) (*models.OrderView, error)
	UpdateOrder(ctx context.Context, orderID, dispatcherID string, patch models.UpdateOrderRequest) (*models.Order, error)
	ListOrders(ctx context.Context, filter models.OrderListFilter) ([]models.OrderView, error)
	GetOrder(ctx context.Context, orderID string) (*models.OrderView, error)
}

// Service implements the order lifecycle state machine on top of the
// repository. Dispatch decisions (the same driver taken by two orders, the
// same vehicle double-booked) are exactly the races the transactions close,
// so there is no non-transactional fallback: a store without multi-row
// atomicity cannot back this service.
type Service struct {
	repo      RepositoryInterface
	users     UserLoader
	authz     *Authorizer
	txTimeout time.Duration
}

// NewService creates the order service. txTimeout caps how long any single
// lifecycle operation may wait on the store before reporting failure.
func NewService(repo RepositoryInterface, users UserLoader, txTimeout time.Duration) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		authz:     NewAuthorizer(users),
		txTimeout: txTimeout,
	}
}

// withTxTimeout bounds every transactional operation; a stuck commit turns
// into a context error instead of a hung request.
func (s *Service) withTxTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.txTimeout)
}

func validateLoadDetails(ld models.LoadDetails) error {
	d := ld.Dimensions
	if ld.Weight <= 0 || d.Length <= 0 || d.Width <= 0 || d.Height <= 0 {
		return models.ErrInvalidLoadDetails
	}
	return nil
}

// CreateOrder registers a new order in 'created' status. Optional driver and
// vehicle references are verified before the insert; the availability flag is
// untouched because a created order is not active yet.
func (s *Service) CreateOrder(ctx context.Context, dispatcherID string, req models.CreateOrderRequest) (*models.Order, error) {
	if !s.authz.Authorize(ctx, nil, ActionCreate, dispatcherID) {
		return nil, models.ErrForbidden
	}

	if req.OrderNumber == "" {
		return nil, models.ErrMissingFields
	}
	if err := validateLoadDetails(req.LoadDetails); err != nil {
		return nil, err
	}

	if req.AssignedDriver != nil {
		driver, err := s.users.FindByID(ctx, *req.AssignedDriver)
		if err != nil {
			return nil, fmt.Errorf("service.CreateOrder: %w", err)
		}
		if driver.Role != models.RoleDriver {
			return nil, models.ErrNotADriver
		}
	}
	if req.VehicleID != nil {
		vehicles, err := s.repo.FetchVehicles(ctx, []string{*req.VehicleID})
		if err != nil {
			return nil, fmt.Errorf("service.CreateOrder: %w", err)
		}
		if _, ok := vehicles[*req.VehicleID]; !ok {
			return nil, models.ErrNotFound
		}
	}

	order := &models.Order{
		ID:                    uuid.NewString(),
		OrderNumber:           req.OrderNumber,
		LoadDetails:           req.LoadDetails,
		PickupAddress:         req.PickupAddress,
		DeliveryAddress:       req.DeliveryAddress,
		Status:                models.StatusCreated,
		AssignedDriver:        req.AssignedDriver,
		VehicleID:             req.VehicleID,
		EstimatedDeliveryTime: req.EstimatedDeliveryTime,
	}

	ctx, cancel := s.withTxTimeout(ctx)
	defer cancel()

	var created *models.Order
	err := s.repo.InTx(ctx, func(r RepositoryInterface) error {
		var err error
		created, err = r.Create(ctx, order)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.CreateOrder: %w", err)
	}
	return created, nil
}

// AcceptOrder moves a 'created' order to in_progress and binds it to the
// accepting driver. The driver's availability flag is refreshed in the same
// transaction, so a committed accept is never observable without the driver
// being marked busy.
func (s *Service) AcceptOrder(ctx context.Context, orderID, driverID string) (*models.Order, error) {
	if !s.authz.Authorize(ctx, nil, ActionAccept, driverID) {
		return nil, models.ErrForbidden
	}

	ctx, cancel := s.withTxTimeout(ctx)
	defer cancel()

	var accepted *models.Order
	err := s.repo.InTx(ctx, func(r RepositoryInterface) error {
		order, err := r.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != models.StatusCreated {
			return models.ErrOrderNotAcceptable
		}

		order.Status = models.StatusInProgress
		order.AssignedDriver = &driverID
		if err := r.Update(ctx, order); err != nil {
			return err
		}
		if err := r.RefreshDriverAvailability(ctx, driverID); err != nil {
			return err
		}
		accepted = order
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.AcceptOrder: %w", err)
	}
	return accepted, nil
}

// CancelOrder cancels a non-terminal order. Only the currently assigned
// driver may cancel; ownership is re-checked under the row lock because the
// assignment can change between the policy check and the transaction.
func (s *Service) CancelOrder(ctx context.Context, orderID, driverID string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.CancelOrder: %w", err)
	}
	if !s.authz.Authorize(ctx, order, ActionCancel, driverID) {
		return nil, models.ErrForbidden
	}

	ctx, cancel := s.withTxTimeout(ctx)
	defer cancel()

	var cancelled *models.Order
	err = s.repo.InTx(ctx, func(r RepositoryInterface) error {
		order, err := r.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.AssignedDriver == nil || *order.AssignedDriver != driverID {
			return models.ErrForbidden
		}
		if !CanTransition(order.Status, models.StatusCancelled) {
			return models.ErrOrderNotCancellable
		}

		order.Status = models.StatusCancelled
		if err := r.Update(ctx, order); err != nil {
			return err
		}
		// The order no longer counts as active, so the driver may become
		// eligible again.
		if err := r.RefreshDriverAvailability(ctx, driverID); err != nil {
			return err
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.CancelOrder: %w", err)
	}
	return cancelled, nil
}

// CompleteOrder marks an in_progress order delivered and recomputes the
// assigned driver's availability.
func (s *Service) CompleteOrder(ctx context.Context, orderID, dispatcherID string) (*models.Order, error) {
	if !s.authz.Authorize(ctx, nil, ActionComplete, dispatcherID) {
		return nil, models.ErrForbidden
	}

	ctx, cancel := s.withTxTimeout(ctx)
	defer cancel()

	var completed *models.Order
	err := s.repo.InTx(ctx, func(r RepositoryInterface) error {
		order, err := r.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !CanTransition(order.Status, models.StatusCompleted) {
			return models.ErrOrderNotCompletable
		}

		order.Status = models.StatusCompleted
		if err := r.Update(ctx, order); err != nil {
			return err
		}
		if order.AssignedDriver != nil {
			if err := r.RefreshDriverAvailability(ctx, *order.AssignedDriver); err != nil {
				return err
			}
		}
		completed = order
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.CompleteOrder: %w", err)
	}
	return completed, nil
}

// DeleteOrder removes an order and cascades an availability recompute for the
// formerly assigned driver.
func (s *Service) DeleteOrder(ctx context.Context, orderID, dispatcherID string) error {
	if !s.authz.Authorize(ctx, nil, ActionDelete, dispatcherID) {
		return models.ErrForbidden
	}

	ctx, cancel := s.withTxTimeout(ctx)
	defer cancel()

	err := s.repo.InTx(ctx, func(r RepositoryInterface) error {
		order, err := r.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := r.Delete(ctx, orderID); err != nil {
			return err
		}
		if order.AssignedDriver != nil {
			return r.RefreshDriverAvailability(ctx, *order.AssignedDriver)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("service.DeleteOrder: %w", err)
	}
	return nil
}

// AssignDriver binds a driver to an order and moves it to in_progress.
// Unlike accept, this is a dispatcher decision and may reassign an order that
// is already in progress; both drivers' availability flags are refreshed in
// the same transaction. A driver who already has an active order is rejected.
func (s *Service) AssignDriver(ctx context.Context, orderID, driverID, dispatcherID string) (*models.OrderView, error) {
	if !s.authz.Authorize(ctx, nil, ActionAssignDriver, dispatcherID) {
		return nil, models.ErrForbidden
	}

	driver, err := s.users.FindByID(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("service.AssignDriver: %w", err)
	}
	if driver.Role != models.RoleDriver {
		return nil, models.ErrNotADriver
	}

	ctx, cancel := s.withTxTimeout(ctx)
	defer cancel()

	var assigned *models.Order
	err = s.repo.InTx(ctx, func(r RepositoryInterface) error {
		order, err := r.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !CanTransition(order.Status, models.StatusInProgress) {
			return models.ErrOrderNotAssignable
		}

		alreadyMine := order.AssignedDriver != nil && *order.AssignedDriver == driverID
		if !alreadyMine {
			active, err := r.CountActiveByDriver(ctx, driverID)
			if err != nil {
				return err
			}
			if active > 0 {
				return models.ErrDriverUnavailable
			}
		}

		previousDriver := order.AssignedDriver
		order.AssignedDriver = &driverID
		order.Status = models.StatusInProgress
		if err := r.Update(ctx, order); err != nil {
			return err
		}

		if err := r.RefreshDriverAvailability(ctx, driverID); err != nil {
			return err
		}
		if previousDriver != nil && *previousDriver != driverID {
			if err := r.RefreshDriverAvailability(ctx, *previousDriver); err != nil {
				return err
			}
		}
		assigned = order
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.AssignDriver: %w", err)
	}

	view, err := s.enrich(ctx, assigned)
	if err != nil {
		return nil, fmt.Errorf("service.AssignDriver: %w", err)
	}
	return view, nil
}

// AssignVehicle binds a vehicle to an order. The order's status is not
// changed; a vehicle already serving another active order is rejected.
func (s *Service) AssignVehicle(ctx context.Context, orderID, vehicleID, dispatcherID string) (*models.OrderView, error) {
	if !s.authz.Authorize(ctx, nil, ActionAssignVehicle, dispatcherID) {
		return nil, models.ErrForbidden
	}

	ctx, cancel := s.withTxTimeout(ctx)
	defer cancel()

	var assigned *models.Order
	var vehicle models.Vehicle
	err := s.repo.InTx(ctx, func(r RepositoryInterface) error {
		order, err := r.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return models.ErrOrderNotAssignable
		}

		vehicles, err := r.FetchVehicles(ctx, []string{vehicleID})
		if err != nil {
			return err
		}
		v, ok := vehicles[vehicleID]
		if !ok {
			return models.ErrNotFound
		}

		alreadyBound := order.VehicleID != nil && *order.VehicleID == vehicleID
		if !alreadyBound {
			active, err := r.CountActiveByVehicle(ctx, vehicleID)
			if err != nil {
				return err
			}
			if active > 0 {
				return models.ErrVehicleInUse
			}
		}

		order.VehicleID = &vehicleID
		if err := r.Update(ctx, order); err != nil {
			return err
		}
		assigned = order
		vehicle = v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.AssignVehicle: %w", err)
	}

	view := EnrichOrder(*assigned, nil, map[string]models.Vehicle{vehicle.ID: vehicle})
	if assigned.AssignedDriver != nil {
		names, err := s.repo.FetchDriverNames(ctx, []string{*assigned.AssignedDriver})
		if err == nil {
			view.DriverInfo = names[*assigned.AssignedDriver]
		}
	}
	return &view, nil
}

// UpdateOrder applies a partial field patch. Assignment and status are
// carried over from the stored order no matter what the patch contains; only
// the dedicated assignment operations may change them.
func (s *Service) UpdateOrder(ctx context.Context, orderID, dispatcherID string, patch models.UpdateOrderRequest) (*models.Order, error) {
	if !s.authz.Authorize(ctx, nil, ActionUpdate, dispatcherID) {
		return nil, models.ErrForbidden
	}
	if patch.LoadDetails != nil {
		if err := validateLoadDetails(*patch.LoadDetails); err != nil {
			return nil, err
		}
	}

	ctx, cancel := s.withTxTimeout(ctx)
	defer cancel()

	var updated *models.Order
	err := s.repo.InTx(ctx, func(r RepositoryInterface) error {
		order, err := r.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if patch.OrderNumber != nil {
			order.OrderNumber = *patch.OrderNumber
		}
		if patch.LoadDetails != nil {
			order.LoadDetails = *patch.LoadDetails
		}
		if patch.PickupAddress != nil {
			order.PickupAddress = *patch.PickupAddress
		}
		if patch.DeliveryAddress != nil {
			order.DeliveryAddress = *patch.DeliveryAddress
		}
		if patch.EstimatedDeliveryTime != nil {
			order.EstimatedDeliveryTime = patch.EstimatedDeliveryTime
		}

		if err := r.Update(ctx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.UpdateOrder: %w", err)
	}
	return updated, nil
}

// ListOrders returns the role-scoped order listing enriched with driver and
// vehicle summaries.
func (s *Service) ListOrders(ctx context.Context, filter models.OrderListFilter) ([]models.OrderView, error) {
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.ListOrders: %w", err)
	}

	views, err := s.enrichAll(ctx, orders)
	if err != nil {
		return nil, fmt.Errorf("service.ListOrders: %w", err)
	}
	if filter.SortByStatusPriority {
		SortByStatusPriority(views)
	}
	return views, nil
}

// GetOrder returns a single enriched order.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*models.OrderView, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.GetOrder: %w", err)
	}
	return s.enrich(ctx, order)
}

func (s *Service) enrich(ctx context.Context, order *models.Order) (*models.OrderView, error) {
	views, err := s.enrichAll(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) enrichAll(ctx context.Context, orders []models.Order) ([]models.OrderView, error) {
	driverIDs, vehicleIDs := CollectRefs(orders)

	names, err := s.repo.FetchDriverNames(ctx, driverIDs)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.repo.FetchVehicles(ctx, vehicleIDs)
	if err != nil {
		return nil, err
	}
	return EnrichOrders(orders, names, vehicles), nil
}
