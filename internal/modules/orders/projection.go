package orders

import (
	"fmt"
	"sort"

	"fleet-dispatch/internal/models"
)

// Read-side projections. The repository only fetches rows; the joins below
// are pure functions over in-memory collections so they can be tested
// without a storage engine.

// VehicleSummary formats the human-readable vehicle descriptor shown in
// order views.
func VehicleSummary(v models.Vehicle) string {
	return fmt.Sprintf("%s %s %s", v.Brand, v.Model, v.LicensePlate)
}

// CollectRefs gathers the distinct driver and vehicle ids referenced by the
// given orders.
func CollectRefs(orders []models.Order) (driverIDs, vehicleIDs []string) {
	seenDrivers := make(map[string]bool)
	seenVehicles := make(map[string]bool)
	for _, o := range orders {
		if o.AssignedDriver != nil && !seenDrivers[*o.AssignedDriver] {
			seenDrivers[*o.AssignedDriver] = true
			driverIDs = append(driverIDs, *o.AssignedDriver)
		}
		if o.VehicleID != nil && !seenVehicles[*o.VehicleID] {
			seenVehicles[*o.VehicleID] = true
			vehicleIDs = append(vehicleIDs, *o.VehicleID)
		}
	}
	return driverIDs, vehicleIDs
}

// EnrichOrder joins one order with its driver name and vehicle descriptor.
// An unresolvable or absent vehicle yields the NoVehicleAssigned sentinel.
func EnrichOrder(order models.Order, driverNames map[string]string, vehicles map[string]models.Vehicle) models.OrderView {
	view := models.OrderView{
		Order:       order,
		VehicleInfo: models.NoVehicleAssigned,
	}
	if order.AssignedDriver != nil {
		view.DriverInfo = driverNames[*order.AssignedDriver]
	}
	if order.VehicleID != nil {
		if v, ok := vehicles[*order.VehicleID]; ok {
			view.VehicleInfo = VehicleSummary(v)
		}
	}
	return view
}

// EnrichOrders joins a batch of orders.
func EnrichOrders(orders []models.Order, driverNames map[string]string, vehicles map[string]models.Vehicle) []models.OrderView {
	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, EnrichOrder(o, driverNames, vehicles))
	}
	return views
}

// statusPriority orders statuses for the dispatch board: active work first,
// then pending, then finished, with anything unknown last.
func statusPriority(s models.OrderStatus) int {
	switch s {
	case models.StatusInProgress:
		return 0
	case models.StatusCreated:
		return 1
	case models.StatusCompleted:
		return 2
	case models.StatusCancelled:
		return 3
	default:
		return 4
	}
}

// SortByStatusPriority sorts views in place: in_progress, created, completed,
// cancelled, others; newest first within each group.
func SortByStatusPriority(views []models.OrderView) {
	sort.SliceStable(views, func(i, j int) bool {
		pi, pj := statusPriority(views[i].Status), statusPriority(views[j].Status)
		if pi != pj {
			return pi < pj
		}
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
}

// FilterOrderHistory splits a driver's orders into the current in-progress
// one and the finished history. Used by the driver detail view.
func FilterOrderHistory(orders []models.Order) (current *models.Order, history []models.Order) {
	for i := range orders {
		o := orders[i]
		switch o.Status {
		case models.StatusInProgress:
			if current == nil {
				current = &orders[i]
			}
		case models.StatusCompleted, models.StatusCancelled:
			history = append(history, o)
		}
	}
	return current, history
}
