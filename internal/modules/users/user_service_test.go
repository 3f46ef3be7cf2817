package users

import (
	"context"
	"testing"

	"fleet-dispatch/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (f *fakeUserRepo) add(u *models.User) {
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	u := *user
	f.add(&u)
	return &u, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, userID string) (*models.User, error) {
	u, ok := f.byID[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) ListDrivers(_ context.Context, _ string, availableOnly bool) ([]models.User, error) {
	var out []models.User
	for _, u := range f.byID {
		if u.Role != models.RoleDriver {
			continue
		}
		if availableOnly && u.Availability != nil && !*u.Availability {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

type fakeOrderDirectory struct {
	orders   []models.Order
	vehicles map[string]models.Vehicle
}

func (f *fakeOrderDirectory) CountActiveByDriver(_ context.Context, driverID string) (int, error) {
	n := 0
	for _, o := range f.orders {
		if o.Status == models.StatusInProgress && o.AssignedDriver != nil && *o.AssignedDriver == driverID {
			n++
		}
	}
	return n, nil
}

func (f *fakeOrderDirectory) ListByDriver(_ context.Context, driverID string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.AssignedDriver != nil && *o.AssignedDriver == driverID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderDirectory) FetchVehicles(_ context.Context, vehicleIDs []string) (map[string]models.Vehicle, error) {
	out := make(map[string]models.Vehicle)
	for _, id := range vehicleIDs {
		if v, ok := f.vehicles[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

const testJWTSecret = "test-secret"

func newTestService(repo *fakeUserRepo, dir *fakeOrderDirectory) ServiceInterface {
	if dir == nil {
		dir = &fakeOrderDirectory{}
	}
	// no emailer and no OAuth config: those paths are exercised separately
	return NewService(repo, dir, nil, nil, testJWTSecret, nil)
}

func driverSignupReq() models.SignupRequest {
	return models.SignupRequest{
		Name:          "Ada Lovell",
		Email:         "ada@example.com",
		Password:      "correct horse battery",
		Role:          models.RoleDriver,
		Phone:         "040123456",
		LicenseNumber: "DL-998877",
	}
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("driver signup issues a token with role claims", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := newTestService(repo, nil)

		resp, err := svc.Signup(ctx, driverSignupReq())
		require.NoError(t, err)
		require.NotNil(t, resp.User)
		assert.Empty(t, resp.User.PasswordHash)
		require.NotNil(t, resp.User.Availability)
		assert.True(t, *resp.User.Availability)

		token, err := jwt.ParseWithClaims(resp.AccessToken, &models.JwtCustomClaims{}, func(*jwt.Token) (any, error) {
			return []byte(testJWTSecret), nil
		})
		require.NoError(t, err)
		claims := token.Claims.(*models.JwtCustomClaims)
		assert.Equal(t, resp.User.ID, claims.UserID)
		assert.Equal(t, models.RoleDriver, claims.Role)

		stored := repo.byEmail["ada@example.com"]
		require.NotNil(t, stored)
		assert.NotEqual(t, "correct horse battery", stored.PasswordHash)
	})

	t.Run("driver without phone or license rejected", func(t *testing.T) {
		svc := newTestService(newFakeUserRepo(), nil)

		req := driverSignupReq()
		req.Phone = ""
		_, err := svc.Signup(ctx, req)
		assert.ErrorIs(t, err, models.ErrMissingFields)

		req = driverSignupReq()
		req.LicenseNumber = ""
		_, err = svc.Signup(ctx, req)
		assert.ErrorIs(t, err, models.ErrMissingFields)
	})

	t.Run("dispatcher signup needs no license", func(t *testing.T) {
		svc := newTestService(newFakeUserRepo(), nil)

		resp, err := svc.Signup(ctx, models.SignupRequest{
			Name:     "Grace Ops",
			Email:    "grace@example.com",
			Password: "another pass",
			Role:     models.RoleDispatcher,
		})
		require.NoError(t, err)
		assert.Nil(t, resp.User.Availability)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := newTestService(repo, nil)

		_, err := svc.Signup(ctx, driverSignupReq())
		require.NoError(t, err)

		_, err = svc.Signup(ctx, driverSignupReq())
		assert.ErrorIs(t, err, models.ErrConflict)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	_, err := svc.Signup(ctx, driverSignupReq())
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := svc.Login(ctx, models.LoginRequest{
			Email:    "ada@example.com",
			Password: "correct horse battery",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Empty(t, resp.User.PasswordHash)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, models.LoginRequest{
			Email:    "ada@example.com",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, models.LoginRequest{
			Email:    "nobody@example.com",
			Password: "whatever",
		})
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})
}

func TestIsAvailable(t *testing.T) {
	ctx := context.Background()
	driverID := "driver-1"

	repo := newFakeUserRepo()
	repo.add(&models.User{ID: driverID, Role: models.RoleDriver})
	repo.add(&models.User{ID: "dispatcher-1", Role: models.RoleDispatcher})

	t.Run("free driver is available", func(t *testing.T) {
		svc := newTestService(repo, &fakeOrderDirectory{})
		free, err := svc.IsAvailable(ctx, driverID)
		require.NoError(t, err)
		assert.True(t, free)
	})

	t.Run("driver with an in_progress order is busy", func(t *testing.T) {
		svc := newTestService(repo, &fakeOrderDirectory{orders: []models.Order{
			{ID: "o1", Status: models.StatusInProgress, AssignedDriver: &driverID},
		}})
		free, err := svc.IsAvailable(ctx, driverID)
		require.NoError(t, err)
		assert.False(t, free)
	})

	t.Run("finished orders do not count", func(t *testing.T) {
		svc := newTestService(repo, &fakeOrderDirectory{orders: []models.Order{
			{ID: "o1", Status: models.StatusCompleted, AssignedDriver: &driverID},
			{ID: "o2", Status: models.StatusCancelled, AssignedDriver: &driverID},
		}})
		free, err := svc.IsAvailable(ctx, driverID)
		require.NoError(t, err)
		assert.True(t, free)
	})

	t.Run("non-driver rejected", func(t *testing.T) {
		svc := newTestService(repo, &fakeOrderDirectory{})
		_, err := svc.IsAvailable(ctx, "dispatcher-1")
		assert.ErrorIs(t, err, models.ErrNotADriver)
	})
}

func TestGetDriverDetail(t *testing.T) {
	ctx := context.Background()
	driverID := "driver-1"

	repo := newFakeUserRepo()
	repo.add(&models.User{ID: driverID, Name: "Ada Lovell", Role: models.RoleDriver})
	repo.add(&models.User{ID: "dispatcher-1", Role: models.RoleDispatcher})

	vehicleID := "v1"
	dir := &fakeOrderDirectory{
		orders: []models.Order{
			{ID: "cur", Status: models.StatusInProgress, AssignedDriver: &driverID, VehicleID: &vehicleID},
			{ID: "old", Status: models.StatusCompleted, AssignedDriver: &driverID},
		},
		vehicles: map[string]models.Vehicle{
			vehicleID: {ID: vehicleID, Brand: "Volvo", Model: "FH16", LicensePlate: "KA-1234"},
		},
	}
	svc := newTestService(repo, dir)

	t.Run("joins current order and history", func(t *testing.T) {
		detail, err := svc.GetDriverDetail(ctx, driverID)
		require.NoError(t, err)

		assert.False(t, detail.Driver.Available)
		require.NotNil(t, detail.CurrentOrder)
		assert.Equal(t, "cur", detail.CurrentOrder.ID)
		assert.Equal(t, "Ada Lovell", detail.CurrentOrder.DriverInfo)
		assert.Equal(t, "Volvo FH16 KA-1234", detail.CurrentOrder.VehicleInfo)

		require.Len(t, detail.OrderHistory, 1)
		assert.Equal(t, "old", detail.OrderHistory[0].ID)
	})

	t.Run("no active order means available", func(t *testing.T) {
		idle := &models.User{ID: "driver-2", Name: "Idle", Role: models.RoleDriver}
		repo.add(idle)

		detail, err := svc.GetDriverDetail(ctx, "driver-2")
		require.NoError(t, err)
		assert.True(t, detail.Driver.Available)
		assert.Nil(t, detail.CurrentOrder)
		assert.Empty(t, detail.OrderHistory)
	})

	t.Run("non-driver rejected", func(t *testing.T) {
		_, err := svc.GetDriverDetail(ctx, "dispatcher-1")
		assert.ErrorIs(t, err, models.ErrNotADriver)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := svc.GetDriverDetail(ctx, "ghost")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestListDrivers(t *testing.T) {
	ctx := context.Background()
	busy := false

	repo := newFakeUserRepo()
	repo.add(&models.User{ID: "driver-1", Name: "Free", Role: models.RoleDriver})
	repo.add(&models.User{ID: "driver-2", Name: "Busy", Role: models.RoleDriver, Availability: &busy})
	repo.add(&models.User{ID: "dispatcher-1", Role: models.RoleDispatcher})

	svc := newTestService(repo, nil)

	all, err := svc.ListDrivers(ctx, "", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	free, err := svc.ListDrivers(ctx, "", true)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, "Free", free[0].Name)
	assert.True(t, free[0].Available)
}
