package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/store-rating/internal/apperr"
	"github.com/iliyamo/store-rating/internal/authz"
	"github.com/iliyamo/store-rating/internal/logger"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/queue"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/validate"
)

const publishTimeout = 3 * time.Second

// StoreService owns store browsing, store creation, rating writes and the
// owner aggregates.
type StoreService struct {
	stores  StoreStore
	ratings RatingStore
	users   UserStore

	events EventPublisher
	cache  CacheInvalidator
	log    *logger.Logger
}

type StoreOption func(*StoreService)

// WithEvents publishes a RatingEvent after every successful rating write.
func WithEvents(p EventPublisher) StoreOption {
	return func(s *StoreService) {
		if p != nil {
			s.events = p
		}
	}
}

// WithCache invalidates cached store reads after every write.
func WithCache(c CacheInvalidator) StoreOption {
	return func(s *StoreService) {
		if c != nil {
			s.cache = c
		}
	}
}

func WithLogger(l *logger.Logger) StoreOption {
	return func(s *StoreService) {
		if l != nil {
			s.log = l
		}
	}
}

func NewStoreService(stores StoreStore, ratings RatingStore, users UserStore, opts ...StoreOption) *StoreService {
	s := &StoreService{
		stores:  stores,
		ratings: ratings,
		users:   users,
		events:  nopPublisher{},
		cache:   nopInvalidator{},
		log:     logger.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ListStoresInput mirrors the listing query string.
type ListStoresInput struct {
	Name    string
	Address string
	SortBy  string
	Order   string
}

// ListStores filters and sorts every store. When viewer is set each row
// carries the viewer's own rating. A sort outside the allow-list is
// rejected before any query runs.
func (s *StoreService) ListStores(ctx context.Context, in ListStoresInput, viewer *model.Identity) ([]model.StoreView, error) {
	sort, err := repository.ParseStoreSort(in.SortBy, in.Order)
	if err != nil {
		return nil, apperr.Validation("invalid sort parameters")
	}
	q := repository.StoreQuery{
		Name:    strings.TrimSpace(in.Name),
		Address: strings.TrimSpace(in.Address),
		Sort:    sort,
	}
	if viewer != nil {
		id := viewer.UserID
		q.ViewerID = &id
	}
	views, err := s.stores.List(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if views == nil {
		views = []model.StoreView{}
	}
	return views, nil
}

// GetStore returns one store with its aggregates.
func (s *StoreService) GetStore(ctx context.Context, id uint64) (model.StoreView, error) {
	v, err := s.stores.GetView(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.StoreView{}, apperr.NotFound("store not found")
	}
	if err != nil {
		return model.StoreView{}, apperr.Internal(err)
	}
	return v, nil
}

type CreateStoreInput struct {
	Name    string  `json:"name" validate:"required,max=60"`
	Email   string  `json:"email" validate:"required,email,max=255"`
	Address string  `json:"address" validate:"required,max=400"`
	OwnerID *uint64 `json:"ownerId"`
}

// CreateStore inserts a store. An owner id that names no user is a
// validation error rather than a dangling reference.
func (s *StoreService) CreateStore(ctx context.Context, in CreateStoreInput) (model.StoreView, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Address = strings.TrimSpace(in.Address)
	if err := validate.Struct(in); err != nil {
		return model.StoreView{}, err
	}
	if in.OwnerID != nil {
		if _, err := s.users.GetByID(ctx, *in.OwnerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.StoreView{}, apperr.Validation("owner does not exist")
			}
			return model.StoreView{}, apperr.Internal(err)
		}
	}

	st := model.Store{Name: in.Name, Email: in.Email, Address: in.Address, OwnerID: in.OwnerID}
	if err := s.stores.Create(ctx, &st); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.StoreView{}, apperr.Conflict("store already exists")
		}
		return model.StoreView{}, apperr.Internal(err)
	}
	s.invalidate(ctx)
	return model.StoreView{
		ID:        st.ID,
		Name:      st.Name,
		Email:     st.Email,
		Address:   st.Address,
		OwnerID:   st.OwnerID,
		CreatedAt: st.CreatedAt,
	}, nil
}

// SubmitRating records the caller's first rating for a store. A second
// submission for the same pair is a conflict; the unique index decides
// races between concurrent submissions.
func (s *StoreService) SubmitRating(ctx context.Context, id model.Identity, storeID uint64, value int) (model.Rating, error) {
	if err := s.checkRatable(ctx, id, storeID, value); err != nil {
		return model.Rating{}, err
	}
	r := model.Rating{UserID: id.UserID, StoreID: storeID, Value: value}
	if err := s.ratings.Create(ctx, &r); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Rating{}, apperr.Conflict("you have already rated this store")
		}
		return model.Rating{}, apperr.Internal(err)
	}
	s.afterRatingWrite(ctx, queue.RatingSubmitted, r)
	return r, nil
}

// UpdateRating overwrites the caller's existing rating for a store.
func (s *StoreService) UpdateRating(ctx context.Context, id model.Identity, storeID uint64, value int) (model.Rating, error) {
	if err := s.checkRatable(ctx, id, storeID, value); err != nil {
		return model.Rating{}, err
	}
	r, err := s.ratings.Update(ctx, id.UserID, storeID, value)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Rating{}, apperr.NotFound("rating not found for this user and store")
	}
	if err != nil {
		return model.Rating{}, apperr.Internal(err)
	}
	s.afterRatingWrite(ctx, queue.RatingUpdated, r)
	return r, nil
}

func (s *StoreService) checkRatable(ctx context.Context, id model.Identity, storeID uint64, value int) error {
	if !model.ValidRating(value) {
		return apperr.Validation("rating must be an integer between 1 and 5")
	}
	st, err := s.stores.GetByID(ctx, storeID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("store not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return authz.ForbidSelfRating(st, id)
}

func (s *StoreService) afterRatingWrite(ctx context.Context, typ queue.EventType, r model.Rating) {
	s.invalidate(ctx)

	at := r.UpdatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	ev := queue.RatingEvent{
		Type:       typ,
		RatingID:   r.ID,
		UserID:     r.UserID,
		StoreID:    r.StoreID,
		Value:      r.Value,
		OccurredAt: at,
	}
	if err := s.events.PublishRating(pctx, ev); err != nil {
		s.log.Warn(ctx, "rating event dropped", err)
	}
}

func (s *StoreService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn(ctx, "store cache invalidation failed", err)
	}
}

// OwnerDashboard reports the owner's store, its average and everyone who
// rated it. An owner with several stores sees the one created first.
func (s *StoreService) OwnerDashboard(ctx context.Context, ownerID uint64) (model.Dashboard, error) {
	owned, err := s.stores.ListByOwner(ctx, ownerID)
	if err != nil {
		return model.Dashboard{}, apperr.Internal(err)
	}
	if len(owned) == 0 {
		return model.Dashboard{}, apperr.NotFound("no store found for this owner")
	}
	st := owned[0]
	raters, err := s.stores.Raters(ctx, st.ID)
	if err != nil {
		return model.Dashboard{}, apperr.Internal(err)
	}
	if raters == nil {
		raters = []model.Rater{}
	}
	return model.Dashboard{Store: st, AverageRating: st.AverageRating, Raters: raters}, nil
}

// UserAggregateRating is the mean of the per-store averages across every
// store the owner has. Unrated stores count as 0; an owner without stores
// scores 0.
func (s *StoreService) UserAggregateRating(ctx context.Context, userID uint64) (float64, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, apperr.NotFound("user not found")
	}
	if err != nil {
		return 0, apperr.Internal(err)
	}
	if u.Role != model.RoleOwner {
		return 0, apperr.Validation("user is not a store owner")
	}
	return s.ownerAggregate(ctx, userID)
}

func (s *StoreService) ownerAggregate(ctx context.Context, ownerID uint64) (float64, error) {
	owned, err := s.stores.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	if len(owned) == 0 {
		return 0, nil
	}
	var sum float64
	for _, v := range owned {
		sum += v.AverageRating
	}
	return sum / float64(len(owned)), nil
}
