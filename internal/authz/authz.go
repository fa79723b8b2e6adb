// Package authz holds the pure authorization checks. Authentication has
// already happened by the time any of these run; an unauthenticated
// request never reaches them.
package authz

import (
	"github.com/iliyamo/store-rating/internal/apperr"
	"github.com/iliyamo/store-rating/internal/model"
)

// Authorize permits id when its role is one of allowed.
func Authorize(id model.Identity, allowed ...model.Role) error {
	for _, r := range allowed {
		if roleMatches(id.Role, r) {
			return nil
		}
	}
	return apperr.Forbidden("user role '" + string(id.Role) + "' is not authorized to access this route")
}

// roleMatches is exhaustive over the role enum so a new role has to be
// placed deliberately.
func roleMatches(have, want model.Role) bool {
	switch have {
	case model.RoleUser, model.RoleAdmin, model.RoleOwner:
		return have == want
	default:
		return false
	}
}

// ForbidSelfRating denies a rating write when the caller owns the target
// store, whatever their role and whether or not they rated it before.
func ForbidSelfRating(store model.Store, id model.Identity) error {
	if store.OwnerID != nil && *store.OwnerID == id.UserID {
		return apperr.Forbidden("owners cannot rate their own store")
	}
	return nil
}
