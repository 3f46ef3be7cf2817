package vehicles

import (
	"context"
	"testing"

	"fleet-dispatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVehicleRepo struct {
	vehicles map[string]*models.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[string]*models.Vehicle)}
}

func (f *fakeVehicleRepo) Create(_ context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	v := *vehicle
	f.vehicles[v.ID] = &v
	return &v, nil
}

func (f *fakeVehicleRepo) FindByID(_ context.Context, vehicleID string) (*models.Vehicle, error) {
	v, ok := f.vehicles[vehicleID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (f *fakeVehicleRepo) List(_ context.Context, _ models.VehicleListFilter) ([]models.VehicleView, error) {
	var views []models.VehicleView
	for _, v := range f.vehicles {
		views = append(views, models.VehicleView{Vehicle: *v})
	}
	return views, nil
}

func validRegisterReq() models.RegisterVehicleRequest {
	return models.RegisterVehicleRequest{
		LicensePlate: "HH-1234",
		Model:        "TGX",
		Brand:        "MAN",
		Year:         2024,
		Capacity: models.Capacity{
			Weight: 18000,
			Volume: models.Dimensions{Length: 13.6, Width: 2.4, Height: 2.7},
		},
	}
}

func TestRegisterVehicle(t *testing.T) {
	ctx := context.Background()

	t.Run("valid registration", func(t *testing.T) {
		repo := newFakeVehicleRepo()
		svc := NewService(repo)

		created, err := svc.RegisterVehicle(ctx, validRegisterReq())
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Contains(t, repo.vehicles, created.ID)
	})

	t.Run("non-positive capacity rejected", func(t *testing.T) {
		svc := NewService(newFakeVehicleRepo())

		req := validRegisterReq()
		req.Capacity.Weight = 0
		_, err := svc.RegisterVehicle(ctx, req)
		assert.ErrorIs(t, err, models.ErrInvalidLoadDetails)

		req = validRegisterReq()
		req.Capacity.Volume.Height = -1
		_, err = svc.RegisterVehicle(ctx, req)
		assert.ErrorIs(t, err, models.ErrInvalidLoadDetails)
	})
}

func TestGetVehicle(t *testing.T) {
	ctx := context.Background()
	repo := newFakeVehicleRepo()
	svc := NewService(repo)

	created, err := svc.RegisterVehicle(ctx, validRegisterReq())
	require.NoError(t, err)

	found, err := svc.GetVehicle(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.LicensePlate, found.LicensePlate)

	_, err = svc.GetVehicle(ctx, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
