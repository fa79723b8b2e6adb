package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-rating/internal/model"
)

var userCols = []string{"id", "name", "email", "password_hash", "address", "role", "created_at"}

func TestUserCreateNormalizesEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash, address, role, created_at) VALUES (?,?,?,?,?,?)")).
		WithArgs("Aisha Kapoor", "aisha@demo.com", "$2a$hash", nil, "USER", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(8, 1))

	u := &model.User{Name: "Aisha Kapoor", Email: "  Aisha@Demo.com ", PasswordHash: "$2a$hash", Role: model.RoleUser}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.EqualValues(t, 8, u.ID)
	assert.Equal(t, "aisha@demo.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'users.email'"})

	err := repo.Create(context.Background(), &model.User{Name: "Aisha", Email: "a@b.co", Role: model.RoleUser})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestUserGetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users u WHERE u.email=? LIMIT 1")).
		WithArgs("rahul@demo.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "Rahul Sharma", "rahul@demo.com", "$2a$hash", "Pune, IN", "OWNER", created))

	u, err := repo.GetByEmail(context.Background(), "Rahul@Demo.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, u.Role)
	require.NotNil(t, u.Address)
	assert.Equal(t, "Pune, IN", *u.Address)
	assert.Equal(t, created, u.CreatedAt)
}

func TestUserGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users u WHERE u.id=?")).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserUpdateRoleMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role=? WHERE id=?")).
		WithArgs("OWNER", uint64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateRole(context.Background(), 404, model.RoleOwner)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserListFiltersAndSort(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND u.role = ? AND LOWER(u.name) LIKE ? ORDER BY u.name DESC, u.id ASC")).
		WithArgs("OWNER", `%50\%%`).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(2, "Sneha 50% Mehta", "sneha@demo.com", "$2a$hash", nil, "OWNER", created))

	role := model.RoleOwner
	sort, err := ParseUserSort("name", "desc")
	require.NoError(t, err)
	users, err := repo.List(context.Background(), UserQuery{Role: &role, Name: "50%", Sort: sort})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Nil(t, users[0].Address)
	require.NoError(t, mock.ExpectationsWereMet())
}
