package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/store-rating/internal/model"
)

// RatingRepo persists ratings. The unique (user_id, store_id) index is
// the only guard against duplicate submissions; no locking happens here.
type RatingRepo struct {
	db *sql.DB
}

func NewRatingRepo(db *sql.DB) *RatingRepo {
	return &RatingRepo{db: db}
}

// Create inserts a new rating. A second rating for the same user and
// store yields ErrDuplicate.
func (r *RatingRepo) Create(ctx context.Context, rt *model.Rating) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO ratings (user_id, store_id, rating_value, created_at, updated_at) VALUES (?,?,?,?,?)",
		rt.UserID, rt.StoreID, rt.Value, now, now)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	rt.CreatedAt = now
	rt.UpdatedAt = now
	return nil
}

// Update overwrites the value of an existing rating and returns the
// updated row. ErrNotFound means the pair has never been rated.
func (r *RatingRepo) Update(ctx context.Context, userID, storeID uint64, value int) (model.Rating, error) {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"UPDATE ratings SET rating_value=?, updated_at=? WHERE user_id=? AND store_id=?",
		value, now, userID, storeID)
	if err != nil {
		return model.Rating{}, err
	}
	if err := expectRow(res); err != nil {
		return model.Rating{}, err
	}
	return r.Get(ctx, userID, storeID)
}

// Get loads the rating of userID for storeID.
func (r *RatingRepo) Get(ctx context.Context, userID, storeID uint64) (model.Rating, error) {
	var rt model.Rating
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, store_id, rating_value, created_at, updated_at FROM ratings WHERE user_id=? AND store_id=? LIMIT 1",
		userID, storeID).
		Scan(&rt.ID, &rt.UserID, &rt.StoreID, &rt.Value, &rt.CreatedAt, &rt.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Rating{}, ErrNotFound
	}
	return rt, err
}
