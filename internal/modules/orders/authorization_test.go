package orders

import (
	"context"
	"testing"

	"fleet-dispatch/internal/models"

	"github.com/stretchr/testify/assert"
)

type fakeUserLoader struct {
	users map[string]*models.User
}

func (f *fakeUserLoader) FindByID(_ context.Context, userID string) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

func testUsers() *fakeUserLoader {
	return &fakeUserLoader{users: map[string]*models.User{
		"driver-1":     {ID: "driver-1", Role: models.RoleDriver},
		"driver-2":     {ID: "driver-2", Role: models.RoleDriver},
		"dispatcher-1": {ID: "dispatcher-1", Role: models.RoleDispatcher},
	}}
}

func TestAuthorizePolicyTable(t *testing.T) {
	authz := NewAuthorizer(testUsers())
	ctx := context.Background()

	driver1 := "driver-1"
	assigned := &models.Order{ID: "o1", Status: models.StatusInProgress, AssignedDriver: &driver1}

	cases := []struct {
		name   string
		order  *models.Order
		action Action
		userID string
		want   bool
	}{
		{"driver accepts", nil, ActionAccept, "driver-1", true},
		{"dispatcher cannot accept", nil, ActionAccept, "dispatcher-1", false},

		{"assigned driver cancels", assigned, ActionCancel, "driver-1", true},
		{"other driver cannot cancel", assigned, ActionCancel, "driver-2", false},
		{"dispatcher cannot cancel", assigned, ActionCancel, "dispatcher-1", false},
		{"cancel without order denied", nil, ActionCancel, "driver-1", false},

		{"dispatcher completes", assigned, ActionComplete, "dispatcher-1", true},
		{"driver cannot complete", assigned, ActionComplete, "driver-1", false},

		{"dispatcher creates", nil, ActionCreate, "dispatcher-1", true},
		{"driver cannot create", nil, ActionCreate, "driver-1", false},
		{"dispatcher deletes", assigned, ActionDelete, "dispatcher-1", true},
		{"driver cannot delete", assigned, ActionDelete, "driver-1", false},
		{"dispatcher updates", assigned, ActionUpdate, "dispatcher-1", true},
		{"dispatcher assigns driver", assigned, ActionAssignDriver, "dispatcher-1", true},
		{"driver cannot assign driver", assigned, ActionAssignDriver, "driver-1", false},
		{"dispatcher assigns vehicle", assigned, ActionAssignVehicle, "dispatcher-1", true},

		{"dispatcher views all", nil, ActionViewAll, "dispatcher-1", true},
		{"driver cannot view all", nil, ActionViewAll, "driver-1", false},
		{"driver views own", nil, ActionViewOwn, "driver-1", true},

		{"unknown user denied", nil, ActionAccept, "ghost", false},
		{"unknown action denied", assigned, Action("promote"), "dispatcher-1", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, authz.Authorize(ctx, tc.order, tc.action, tc.userID))
		})
	}
}

func TestAuthorizeCancelChecksOwnershipNotJustRole(t *testing.T) {
	authz := NewAuthorizer(testUsers())

	unassigned := &models.Order{ID: "o2", Status: models.StatusCreated}
	assert.False(t, authz.Authorize(context.Background(), unassigned, ActionCancel, "driver-1"))
}
