package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/store-rating/internal/model"
)

type StatsRepo struct{ DB *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{DB: db} }

// Counts returns the number of users, stores and ratings in one round trip.
func (r *StatsRepo) Counts(ctx context.Context) (model.Stats, error) {
	var s model.Stats
	err := r.DB.QueryRowContext(ctx, `SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM stores),
			(SELECT COUNT(*) FROM ratings)`).
		Scan(&s.UserCount, &s.StoreCount, &s.RatingCount)
	return s, err
}
