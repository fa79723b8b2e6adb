package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/store-rating/internal/apperr"
	"github.com/iliyamo/store-rating/internal/config"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/service"
	"github.com/iliyamo/store-rating/internal/service/servicetest"
)

type services struct {
	auth   *service.AuthService
	stores *service.StoreService
	admin  *service.AdminService
}

func newServices() services {
	mem := servicetest.New()
	stores := service.NewStoreService(mem.Stores(), mem.Ratings(), mem.Users())
	return services{
		auth:   service.NewAuthService(mem.Users(), service.AuthConfig{Secret: "seed-secret", BcryptCost: bcrypt.MinCost}),
		stores: stores,
		admin:  service.NewAdminService(mem.Users(), mem.Stats(), stores, bcrypt.MinCost),
	}
}

var rootAdmin = service.CreateUserInput{Name: "System Administrator", Email: "root@example.com", Password: "Secret#123"}

func TestRunAdminOnly(t *testing.T) {
	s := newServices()
	ctx := context.Background()

	res, err := Run(ctx, s.admin, s.stores, nil, Options{Admin: rootAdmin})
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 1}, res)

	login, err := s.auth.Login(ctx, "root@example.com", "Secret#123")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, login.User.Role)

	res, err = Run(ctx, s.admin, s.stores, nil, Options{Admin: rootAdmin})
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

func TestRunDemoIsIdempotent(t *testing.T) {
	s := newServices()
	ctx := context.Background()

	res, err := Run(ctx, s.admin, s.stores, nil, Options{Admin: rootAdmin, Demo: true})
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 9, Stores: 5, Ratings: 17}, res)

	res, err = Run(ctx, s.admin, s.stores, nil, Options{Admin: rootAdmin, Demo: true})
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	stats, err := s.admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Stats{UserCount: 9, StoreCount: 5, RatingCount: 17}, stats)

	owner, err := s.auth.Login(ctx, "rahul@demo.com", DemoPassword)
	require.NoError(t, err)
	d, err := s.stores.OwnerDashboard(ctx, owner.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sunrise Grocery", d.Store.Name)
	assert.NotEmpty(t, d.Raters)
}

func TestRunRejectsRoleClash(t *testing.T) {
	s := newServices()
	ctx := context.Background()
	_, err := s.admin.CreateUser(ctx, service.CreateUserInput{
		Name: "Root User", Email: "root@example.com", Password: "Secret#123", Role: "USER",
	})
	require.NoError(t, err)

	_, err = Run(ctx, s.admin, s.stores, nil, Options{Admin: rootAdmin})
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
}

func TestAdminFromConfig(t *testing.T) {
	in := AdminFromConfig(config.BootstrapConfig{Name: "Root Admin", Email: "root@example.com", Password: "Secret#123"})
	assert.Nil(t, in.Address)
	assert.Equal(t, "root@example.com", in.Email)

	in = AdminFromConfig(config.BootstrapConfig{Email: "root@example.com", Address: "HQ"})
	require.NotNil(t, in.Address)
	assert.Equal(t, "HQ", *in.Address)
}
