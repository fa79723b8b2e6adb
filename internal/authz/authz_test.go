package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/store-rating/internal/apperr"
	"github.com/iliyamo/store-rating/internal/model"
)

func TestAuthorize(t *testing.T) {
	admin := model.Identity{UserID: 1, Role: model.RoleAdmin}
	owner := model.Identity{UserID: 2, Role: model.RoleOwner}
	user := model.Identity{UserID: 3, Role: model.RoleUser}
	bogus := model.Identity{UserID: 4, Role: model.Role("ROOT")}

	assert.NoError(t, Authorize(admin, model.RoleAdmin))
	assert.NoError(t, Authorize(owner, model.RoleOwner))
	assert.NoError(t, Authorize(user, model.RoleUser, model.RoleOwner))

	for _, tc := range []struct {
		id      model.Identity
		allowed []model.Role
	}{
		{user, []model.Role{model.RoleAdmin}},
		{owner, []model.Role{model.RoleAdmin}},
		{admin, []model.Role{model.RoleOwner}},
		{bogus, []model.Role{model.Role("ROOT")}},
		{user, nil},
	} {
		err := Authorize(tc.id, tc.allowed...)
		assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err), "%v %v", tc.id, tc.allowed)
	}
}

func TestForbidSelfRating(t *testing.T) {
	ownerID := uint64(7)
	owned := model.Store{ID: 1, OwnerID: &ownerID}
	unowned := model.Store{ID: 2}

	for _, role := range model.Roles {
		err := ForbidSelfRating(owned, model.Identity{UserID: 7, Role: role})
		assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err), role)
	}
	assert.NoError(t, ForbidSelfRating(owned, model.Identity{UserID: 8, Role: model.RoleOwner}))
	assert.NoError(t, ForbidSelfRating(unowned, model.Identity{UserID: 7, Role: model.RoleOwner}))
}
