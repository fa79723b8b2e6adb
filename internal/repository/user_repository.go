package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/store-rating/internal/model"
)

const userColumns = "u.id, u.name, u.email, u.password_hash, u.address, u.role, u.created_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// UserQuery filters and orders the admin user listing. Role is exact; the
// text filters are case-insensitive substring matches.
type UserQuery struct {
	Role    *model.Role
	Name    string
	Email   string
	Address string
	Sort    Sort
}

// Create inserts u and sets its ID and CreatedAt. The email is stored
// lower-cased; a taken email yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, address, role, created_at) VALUES (?,?,?,?,?,?)",
		u.Name, u.Email, u.PasswordHash, u.Address, string(u.Role), u.CreatedAt)
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
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u WHERE u.email=? LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u WHERE u.id=? LIMIT 1", id)
	return scanUser(row)
}

// UpdatePassword replaces the stored hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// UpdateRole changes a user's role.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role model.Role) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", string(role), id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// List returns users matching q in the requested order.
func (r *UserRepo) List(ctx context.Context, q UserQuery) ([]model.User, error) {
	order, err := orderBy(userSortColumns, q.Sort, "u.id ASC")
	if err != nil {
		return nil, err
	}

	where := []string{"1=1"}
	args := []any{}
	if q.Role != nil {
		where = append(where, "u.role = ?")
		args = append(args, string(*q.Role))
	}
	if q.Name != "" {
		where = append(where, "LOWER(u.name) LIKE ?")
		args = append(args, likePattern(q.Name))
	}
	if q.Email != "" {
		where = append(where, "LOWER(u.email) LIKE ?")
		args = append(args, likePattern(q.Email))
	}
	if q.Address != "" {
		where = append(where, "LOWER(u.address) LIKE ?")
		args = append(args, likePattern(q.Address))
	}

	query := "SELECT " + userColumns + " FROM users u WHERE " + strings.Join(where, " AND ") + order
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u       model.User
		address sql.NullString
		role    string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &address, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if address.Valid {
		u.Address = &address.String
	}
	u.Role = model.Role(role)
	return u, nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
