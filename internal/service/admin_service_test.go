package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-rating/internal/apperr"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/service"
)

func TestAdminStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")
	f.register(t, "Bobby", "bob@example.com")
	st := f.createStore(t, "Shop", "shop@example.com", nil)
	_, err := f.stores.SubmitRating(ctx, alice, st.ID, 3)
	require.NoError(t, err)

	got, err := f.admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Stats{UserCount: 2, StoreCount: 1, RatingCount: 1}, got)
}

func TestAdminListUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Charlie", "charlie@example.com")
	f.register(t, "Alice", "alice@example.com")
	f.createUser(t, "Olivia Owner", "olivia@example.com", model.RoleOwner)

	all, err := f.admin.ListUsers(ctx, service.ListUsersInput{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Charlie", all[0].Name, "ordered by id")

	byName, err := f.admin.ListUsers(ctx, service.ListUsersInput{SortBy: "name", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", byName[0].Name)

	owners, err := f.admin.ListUsers(ctx, service.ListUsersInput{Role: "owner"})
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, "olivia@example.com", owners[0].Email)

	byEmail, err := f.admin.ListUsers(ctx, service.ListUsersInput{Email: "ALI"})
	require.NoError(t, err)
	require.Len(t, byEmail, 1)

	_, err = f.admin.ListUsers(ctx, service.ListUsersInput{Role: "ROOT"})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	_, err = f.admin.ListUsers(ctx, service.ListUsersInput{SortBy: "password_hash"})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestAdminGetUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")
	owner := f.createUser(t, "Olivia Owner", "olivia@example.com", model.RoleOwner)
	st := f.createStore(t, "Shop", "shop@example.com", &owner)
	_, err := f.stores.SubmitRating(ctx, alice, st.ID, 5)
	require.NoError(t, err)

	d, err := f.admin.GetUser(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Nil(t, d.Rating)

	d, err = f.admin.GetUser(ctx, owner.UserID)
	require.NoError(t, err)
	require.NotNil(t, d.Rating)
	assert.Equal(t, 5.0, *d.Rating)

	_, err = f.admin.GetUser(ctx, 999)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestAdminUpdateUserRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")

	u, err := f.admin.UpdateUserRole(ctx, alice.UserID, "owner")
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, u.Role)

	_, err = f.admin.UpdateUserRole(ctx, alice.UserID, "superuser")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	_, err = f.admin.UpdateUserRole(ctx, 999, "ADMIN")
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestAdminCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.admin.CreateUser(ctx, service.CreateUserInput{
		Name:     "Adam Admin",
		Email:    "Adam@Example.com",
		Password: testPassword,
		Role:     "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)

	res, err := f.auth.Login(ctx, "adam@example.com", testPassword)
	require.NoError(t, err)
	id, err := f.auth.Authenticate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, id.Role)

	_, err = f.admin.CreateUser(ctx, service.CreateUserInput{
		Name: "Adam Again", Email: "adam@example.com", Password: testPassword, Role: "USER",
	})
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))

	_, err = f.admin.CreateUser(ctx, service.CreateUserInput{
		Name: "Nobody", Email: "nobody@example.com", Password: testPassword, Role: "ROOT",
	})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestAdminEnsureUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := service.CreateUserInput{
		Name: "System Administrator", Email: "Root@Example.com", Password: testPassword, Role: "ADMIN",
	}

	u, created, err := f.admin.EnsureUser(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.RoleAdmin, u.Role)

	again, created, err := f.admin.EnsureUser(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)

	res, err := f.auth.Login(ctx, "root@example.com", testPassword)
	require.NoError(t, err)
	id, err := f.auth.Authenticate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, id.Role)

	f.register(t, "Alice", "alice@example.com")
	_, _, err = f.admin.EnsureUser(ctx, service.CreateUserInput{
		Name: "Alice", Email: "alice@example.com", Password: testPassword, Role: "ADMIN",
	})
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err), "existing account keeps its role")

	_, _, err = f.admin.EnsureUser(ctx, service.CreateUserInput{
		Name: "Weak Admin", Email: "weak@example.com", Password: "weak", Role: "ADMIN",
	})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, _, err = f.admin.EnsureUser(ctx, service.CreateUserInput{Email: "x@example.com", Role: "ROOT"})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}
