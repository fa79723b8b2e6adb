package service

import (
	"context"

	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/queue"
	"github.com/iliyamo/store-rating/internal/repository"
)

// The interfaces below are satisfied by the MySQL repositories and by the
// in-memory doubles in servicetest.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	UpdateRole(ctx context.Context, id uint64, role model.Role) error
	List(ctx context.Context, q repository.UserQuery) ([]model.User, error)
}

type StoreStore interface {
	Create(ctx context.Context, s *model.Store) error
	GetByID(ctx context.Context, id uint64) (model.Store, error)
	GetView(ctx context.Context, id uint64) (model.StoreView, error)
	List(ctx context.Context, q repository.StoreQuery) ([]model.StoreView, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.StoreView, error)
	Raters(ctx context.Context, storeID uint64) ([]model.Rater, error)
}

type RatingStore interface {
	Create(ctx context.Context, r *model.Rating) error
	Update(ctx context.Context, userID, storeID uint64, value int) (model.Rating, error)
}

type StatsStore interface {
	Counts(ctx context.Context) (model.Stats, error)
}

// EventPublisher announces rating writes. Failures never fail the write.
type EventPublisher interface {
	PublishRating(ctx context.Context, ev queue.RatingEvent) error
}

// CacheInvalidator drops cached store reads after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type nopPublisher struct{}

func (nopPublisher) PublishRating(context.Context, queue.RatingEvent) error { return nil }

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context) error { return nil }
