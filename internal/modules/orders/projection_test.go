package orders

import (
	"testing"
	"time"

	"fleet-dispatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCollectRefs(t *testing.T) {
	orders := []models.Order{
		{ID: "o1", AssignedDriver: strPtr("d1"), VehicleID: strPtr("v1")},
		{ID: "o2", AssignedDriver: strPtr("d1")},
		{ID: "o3", AssignedDriver: strPtr("d2"), VehicleID: strPtr("v1")},
		{ID: "o4"},
	}

	driverIDs, vehicleIDs := CollectRefs(orders)
	assert.ElementsMatch(t, []string{"d1", "d2"}, driverIDs)
	assert.ElementsMatch(t, []string{"v1"}, vehicleIDs)
}

func TestEnrichOrder(t *testing.T) {
	names := map[string]string{"d1": "Ada Lovell"}
	vehicles := map[string]models.Vehicle{
		"v1": {ID: "v1", Brand: "Volvo", Model: "FH16", LicensePlate: "KA-1234"},
	}

	t.Run("driver and vehicle resolved", func(t *testing.T) {
		view := EnrichOrder(models.Order{ID: "o1", AssignedDriver: strPtr("d1"), VehicleID: strPtr("v1")}, names, vehicles)
		assert.Equal(t, "Ada Lovell", view.DriverInfo)
		assert.Equal(t, "Volvo FH16 KA-1234", view.VehicleInfo)
	})

	t.Run("no vehicle yields sentinel", func(t *testing.T) {
		view := EnrichOrder(models.Order{ID: "o2", AssignedDriver: strPtr("d1")}, names, vehicles)
		assert.Equal(t, models.NoVehicleAssigned, view.VehicleInfo)
	})

	t.Run("unresolvable vehicle yields sentinel", func(t *testing.T) {
		view := EnrichOrder(models.Order{ID: "o3", VehicleID: strPtr("gone")}, names, vehicles)
		assert.Equal(t, models.NoVehicleAssigned, view.VehicleInfo)
		assert.Empty(t, view.DriverInfo)
	})
}

func TestSortByStatusPriority(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mk := func(id string, status models.OrderStatus, age time.Duration) models.OrderView {
		return models.OrderView{Order: models.Order{ID: id, Status: status, CreatedAt: base.Add(-age)}}
	}

	views := []models.OrderView{
		mk("done", models.StatusCompleted, time.Hour),
		mk("old-active", models.StatusInProgress, 3*time.Hour),
		mk("cancelled", models.StatusCancelled, time.Minute),
		mk("pending", models.StatusCreated, 2*time.Hour),
		mk("new-active", models.StatusInProgress, time.Minute),
	}

	SortByStatusPriority(views)

	got := make([]string, len(views))
	for i, v := range views {
		got[i] = v.ID
	}
	assert.Equal(t, []string{"new-active", "old-active", "pending", "done", "cancelled"}, got)
}

func TestFilterOrderHistory(t *testing.T) {
	orders := []models.Order{
		{ID: "h1", Status: models.StatusCompleted},
		{ID: "cur", Status: models.StatusInProgress},
		{ID: "h2", Status: models.StatusCancelled},
		{ID: "new", Status: models.StatusCreated},
	}

	current, history := FilterOrderHistory(orders)
	require.NotNil(t, current)
	assert.Equal(t, "cur", current.ID)

	ids := make([]string, len(history))
	for i, o := range history {
		ids[i] = o.ID
	}
	assert.Equal(t, []string{"h1", "h2"}, ids)
}

func TestFilterOrderHistoryNoCurrent(t *testing.T) {
	current, history := FilterOrderHistory([]models.Order{
		{ID: "h1", Status: models.StatusCompleted},
	})
	assert.Nil(t, current)
	assert.Len(t, history, 1)
}
