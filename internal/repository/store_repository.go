package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/store-rating/internal/model"
)

// StoreRepo reads and writes stores and computes their rating aggregates.
// Averages and counts are never stored; every read derives them from the
// ratings table.
type StoreRepo struct {
	db *sql.DB
}

func NewStoreRepo(db *sql.DB) *StoreRepo {
	return &StoreRepo{db: db}
}

// StoreQuery filters and orders a store listing. ViewerID, when set, adds
// the viewer's own rating to each row.
type StoreQuery struct {
	Name     string
	Address  string
	Sort     Sort
	ViewerID *uint64
}

// storeViewSelect is shared by every read that returns model.StoreView.
// The viewer join matches at most one row per store because of the unique
// (user_id, store_id) index, so it never inflates the aggregates.
func storeViewSelect(withViewer bool) string {
	userRating := "NULL"
	viewerJoin := ""
	if withViewer {
		userRating = "MAX(ur.rating_value)"
		viewerJoin = " LEFT JOIN ratings ur ON ur.store_id = s.id AND ur.user_id = ?"
	}
	return `SELECT
			s.id,
			s.name,
			s.email,
			s.address,
			s.owner_id,
			s.created_at,
			COALESCE(AVG(r.rating_value), 0) AS average_rating,
			COUNT(r.id) AS rating_count,
			` + userRating + ` AS user_rating
		FROM stores s
		LEFT JOIN ratings r ON r.store_id = s.id` + viewerJoin
}

const storeGroupBy = " GROUP BY s.id, s.name, s.email, s.address, s.owner_id, s.created_at"

// Create inserts a store and populates its ID and CreatedAt.
func (r *StoreRepo) Create(ctx context.Context, s *model.Store) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO stores (name, email, address, owner_id, created_at) VALUES (?,?,?,?,?)",
		s.Name, s.Email, s.Address, s.OwnerID, s.CreatedAt)
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
	s.ID = uint64(id)
	return nil
}

// GetByID loads the bare store row, used by the self-rating check.
func (r *StoreRepo) GetByID(ctx context.Context, id uint64) (model.Store, error) {
	var (
		s       model.Store
		ownerID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, email, address, owner_id, created_at FROM stores WHERE id = ?", id).
		Scan(&s.ID, &s.Name, &s.Email, &s.Address, &ownerID, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Store{}, ErrNotFound
	}
	if err != nil {
		return model.Store{}, err
	}
	if ownerID.Valid {
		v := uint64(ownerID.Int64)
		s.OwnerID = &v
	}
	return s, nil
}

// GetView returns a single store with its aggregates.
func (r *StoreRepo) GetView(ctx context.Context, id uint64) (model.StoreView, error) {
	query := storeViewSelect(false) + " WHERE s.id = ?" + storeGroupBy
	row := r.db.QueryRowContext(ctx, query, id)
	return scanStoreView(row)
}

// List returns stores matching q. The sort column comes from the
// allow-list in sort.go; filter values are always bound as arguments.
func (r *StoreRepo) List(ctx context.Context, q StoreQuery) ([]model.StoreView, error) {
	order, err := orderBy(storeSortColumns, q.Sort, "s.id ASC")
	if err != nil {
		return nil, err
	}

	args := []any{}
	if q.ViewerID != nil {
		args = append(args, *q.ViewerID)
	}
	where := []string{"1=1"}
	if q.Name != "" {
		where = append(where, "LOWER(s.name) LIKE ?")
		args = append(args, likePattern(q.Name))
	}
	if q.Address != "" {
		where = append(where, "LOWER(s.address) LIKE ?")
		args = append(args, likePattern(q.Address))
	}

	query := storeViewSelect(q.ViewerID != nil) +
		" WHERE " + strings.Join(where, " AND ") +
		storeGroupBy + order
	return r.queryViews(ctx, query, args...)
}

// ListByOwner returns every store owned by ownerID with its aggregates,
// lowest id first. The owner dashboard and the admin owner rating are
// both computed from this result.
func (r *StoreRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.StoreView, error) {
	query := storeViewSelect(false) + " WHERE s.owner_id = ?" + storeGroupBy + " ORDER BY s.id ASC"
	return r.queryViews(ctx, query, ownerID)
}

// Raters lists the users who rated storeID with their rating values,
// most recently updated first.
func (r *StoreRepo) Raters(ctx context.Context, storeID uint64) ([]model.Rater, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT u.id, u.name, u.email, r.rating_value
		FROM ratings r
		JOIN users u ON u.id = r.user_id
		WHERE r.store_id = ?
		ORDER BY r.updated_at DESC, u.id ASC`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Rater{}
	for rows.Next() {
		var rt model.Rater
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Email, &rt.RatingValue); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *StoreRepo) queryViews(ctx context.Context, query string, args ...any) ([]model.StoreView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.StoreView{}
	for rows.Next() {
		v, err := scanStoreView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanStoreView(row rowScanner) (model.StoreView, error) {
	var (
		v          model.StoreView
		ownerID    sql.NullInt64
		userRating sql.NullInt64
	)
	err := row.Scan(&v.ID, &v.Name, &v.Email, &v.Address, &ownerID, &v.CreatedAt,
		&v.AverageRating, &v.RatingCount, &userRating)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StoreView{}, ErrNotFound
	}
	if err != nil {
		return model.StoreView{}, err
	}
	if ownerID.Valid {
		id := uint64(ownerID.Int64)
		v.OwnerID = &id
	}
	if userRating.Valid {
		ur := int(userRating.Int64)
		v.UserRating = &ur
	}
	return v, nil
}
