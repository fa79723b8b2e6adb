package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/store-rating/internal/apperr"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/validate"
)

// AdminService backs the administrator API.
type AdminService struct {
	users      UserStore
	stats      StatsStore
	stores     *StoreService
	bcryptCost int
}

func NewAdminService(users UserStore, stats StatsStore, stores *StoreService, bcryptCost int) *AdminService {
	return &AdminService{users: users, stats: stats, stores: stores, bcryptCost: bcryptCost}
}

func (s *AdminService) Stats(ctx context.Context) (model.Stats, error) {
	st, err := s.stats.Counts(ctx)
	if err != nil {
		return model.Stats{}, apperr.Internal(err)
	}
	return st, nil
}

type ListUsersInput struct {
	Role    string
	Name    string
	Email   string
	Address string
	SortBy  string
	Order   string
}

func (s *AdminService) ListUsers(ctx context.Context, in ListUsersInput) ([]model.User, error) {
	sort, err := repository.ParseUserSort(in.SortBy, in.Order)
	if err != nil {
		return nil, apperr.Validation("invalid sort parameters")
	}
	q := repository.UserQuery{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Address: strings.TrimSpace(in.Address),
		Sort:    sort,
	}
	if r := strings.TrimSpace(in.Role); r != "" {
		role, err := model.ParseRole(r)
		if err != nil {
			return nil, apperr.Validation("invalid role filter")
		}
		q.Role = &role
	}
	users, err := s.users.List(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// UserDetail is a user as shown to an administrator. Rating is only set
// for owners.
type UserDetail struct {
	User   model.User
	Rating *float64
}

func (s *AdminService) GetUser(ctx context.Context, id uint64) (UserDetail, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return UserDetail{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return UserDetail{}, apperr.Internal(err)
	}
	d := UserDetail{User: u}
	if u.Role == model.RoleOwner {
		avg, err := s.stores.ownerAggregate(ctx, u.ID)
		if err != nil {
			return UserDetail{}, err
		}
		d.Rating = &avg
	}
	return d, nil
}

// UpdateUserRole changes a user's role. Tokens already issued keep the
// old role until they expire.
func (s *AdminService) UpdateUserRole(ctx context.Context, id uint64, role string) (model.User, error) {
	r, err := model.ParseRole(role)
	if err != nil {
		return model.User{}, apperr.Validation("role must be one of USER, ADMIN, OWNER")
	}
	if err := s.users.UpdateRole(ctx, id, r); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, apperr.NotFound("user not found")
		}
		return model.User{}, apperr.Internal(err)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, apperr.Internal(err)
	}
	return u, nil
}

type CreateUserInput struct {
	Name     string  `json:"name" validate:"min=4,max=60"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"password"`
	Address  *string `json:"address" validate:"omitempty,max=400"`
	Role     string  `json:"role" validate:"required,role"`
}

// CreateUser lets an administrator add an account of any role.
func (s *AdminService) CreateUser(ctx context.Context, in CreateUserInput) (model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Address = trimOptional(in.Address)
	if err := validate.Struct(in); err != nil {
		return model.User{}, err
	}
	role, err := model.ParseRole(in.Role)
	if err != nil {
		return model.User{}, apperr.Validation("role must be one of USER, ADMIN, OWNER")
	}
	return createUser(ctx, s.users, s.bcryptCost, in.Name, in.Email, in.Password, in.Address, role)
}

// EnsureUser creates the account unless one with the same email already
// exists. An existing account must have the requested role. The bool
// reports whether a new account was created. Used to bootstrap the first
// administrator and the demo data set.
func (s *AdminService) EnsureUser(ctx context.Context, in CreateUserInput) (model.User, bool, error) {
	role, err := model.ParseRole(in.Role)
	if err != nil {
		return model.User{}, false, apperr.Validation("role must be one of USER, ADMIN, OWNER")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role != role {
			return model.User{}, false, apperr.Conflict("account " + email + " exists with role " + u.Role.String())
		}
		return u, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return model.User{}, false, apperr.Internal(err)
	}

	u, err = s.CreateUser(ctx, in)
	if err != nil {
		return model.User{}, false, err
	}
	return u, true, nil
}
