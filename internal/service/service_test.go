package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/service"
	"github.com/iliyamo/store-rating/internal/service/servicetest"
)

const (
	testSecret   = "test-secret"
	testPassword = "Secret#123"
)

type fixture struct {
	mem    *servicetest.Memory
	events *servicetest.Events
	inv    *servicetest.Invalidations
	auth   *service.AuthService
	stores *service.StoreService
	admin  *service.AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := servicetest.New()
	f := &fixture{
		mem:    mem,
		events: &servicetest.Events{},
		inv:    &servicetest.Invalidations{},
	}
	f.auth = service.NewAuthService(mem.Users(), service.AuthConfig{
		Secret:     testSecret,
		BcryptCost: bcrypt.MinCost,
	})
	f.stores = service.NewStoreService(mem.Stores(), mem.Ratings(), mem.Users(),
		service.WithEvents(f.events),
		service.WithCache(f.inv),
	)
	f.admin = service.NewAdminService(mem.Users(), mem.Stats(), f.stores, bcrypt.MinCost)
	return f
}

func (f *fixture) register(t *testing.T, name, email string) model.Identity {
	t.Helper()
	res, err := f.auth.Register(context.Background(), service.RegisterInput{
		Name:     name,
		Email:    email,
		Password: testPassword,
	})
	require.NoError(t, err)
	return model.Identity{UserID: res.User.ID, Role: res.User.Role}
}

func (f *fixture) createUser(t *testing.T, name, email string, role model.Role) model.Identity {
	t.Helper()
	u, err := f.admin.CreateUser(context.Background(), service.CreateUserInput{
		Name:     name,
		Email:    email,
		Password: testPassword,
		Role:     string(role),
	})
	require.NoError(t, err)
	return model.Identity{UserID: u.ID, Role: u.Role}
}

func (f *fixture) createStore(t *testing.T, name, email string, owner *model.Identity) model.StoreView {
	t.Helper()
	in := service.CreateStoreInput{Name: name, Email: email, Address: name + " Street 1"}
	if owner != nil {
		id := owner.UserID
		in.OwnerID = &id
	}
	st, err := f.stores.CreateStore(context.Background(), in)
	require.NoError(t, err)
	return st
}
