package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-rating/internal/apperr"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/service"
	"github.com/iliyamo/store-rating/internal/utils"
)

func TestRegisterIssuesUserToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, service.RegisterInput{
		Name:     "  Alice Anderson ",
		Email:    "Alice@Example.com",
		Password: testPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Anderson", res.User.Name)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, model.RoleUser, res.User.Role)
	assert.NotEqual(t, testPassword, res.User.PasswordHash)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)

	id, err := f.auth.Authenticate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, model.Identity{UserID: res.User.ID, Role: model.RoleUser}, id)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	long := strings.Repeat("a", 401)

	cases := map[string]service.RegisterInput{
		"short name":     {Name: "Al", Email: "al@example.com", Password: testPassword},
		"bad email":      {Name: "Alice", Email: "not-an-email", Password: testPassword},
		"weak password":  {Name: "Alice", Email: "al@example.com", Password: "password"},
		"long password":  {Name: "Alice", Email: "al@example.com", Password: "Abcdefghijklmnop#"},
		"long address":   {Name: "Alice", Email: "al@example.com", Password: testPassword, Address: &long},
		"missing fields": {},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, in)
			assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
		})
	}
	assert.Zero(t, f.mem.QueryCount())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice", "alice@example.com")

	_, err := f.auth.Register(context.Background(), service.RegisterInput{
		Name:     "Alice Again",
		Email:    "ALICE@example.com",
		Password: testPassword,
	})
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "Alice", "alice@example.com")

	res, err := f.auth.Login(ctx, " ALICE@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, id.UserID, res.User.ID)

	_, wrongPass := f.auth.Login(ctx, "alice@example.com", "Wrong#123")
	_, unknown := f.auth.Login(ctx, "bob@example.com", testPassword)
	assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(wrongPass))
	assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(unknown))
	assert.Equal(t, wrongPass.Error(), unknown.Error())

	for _, creds := range [][2]string{{"", ""}, {"alice@example.com", ""}, {"  ", testPassword}} {
		_, err = f.auth.Login(ctx, creds[0], creds[1])
		assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err), creds[0])
		assert.Equal(t, unknown.Error(), err.Error())
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "Alice", "alice@example.com")

	err := f.auth.ChangePassword(ctx, id, "Wrong#123", "Another#456")
	assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))
	_, err = f.auth.Login(ctx, "alice@example.com", testPassword)
	require.NoError(t, err, "old password must survive a failed change")

	err = f.auth.ChangePassword(ctx, id, testPassword, "weak")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	require.NoError(t, f.auth.ChangePassword(ctx, id, testPassword, "Another#456"))
	_, err = f.auth.Login(ctx, "alice@example.com", testPassword)
	assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))
	_, err = f.auth.Login(ctx, "alice@example.com", "Another#456")
	assert.NoError(t, err)

	err = f.auth.ChangePassword(ctx, model.Identity{UserID: 99, Role: model.RoleUser}, testPassword, "Another#456")
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	f := newFixture(t)

	expired, err := utils.NewAccessToken(testSecret, 1, model.RoleUser, -time.Minute)
	require.NoError(t, err)
	foreign, err := utils.NewAccessToken("other-secret", 1, model.RoleUser, time.Hour)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"empty":   "",
		"garbage": "not.a.token",
		"expired": expired.Token,
		"foreign": foreign.Token,
	} {
		_, err := f.auth.Authenticate(raw)
		assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err), name)
	}
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	id := f.register(t, "Alice", "alice@example.com")

	u, err := f.auth.Profile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = f.auth.Profile(context.Background(), model.Identity{UserID: 42})
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}
