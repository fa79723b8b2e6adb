package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/store-rating/internal/apperr"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/utils"
	"github.com/iliyamo/store-rating/internal/validate"
)

// AuthConfig carries the signing secret, token lifetime and bcrypt cost.
type AuthConfig struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

// AuthService registers users, verifies credentials and issues stateless
// bearer tokens.
type AuthService struct {
	users UserStore
	cfg   AuthConfig

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users UserStore, cfg AuthConfig) *AuthService {
	if users == nil {
		panic("nil user store passed to NewAuthService")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	return &AuthService{users: users, cfg: cfg}
}

type RegisterInput struct {
	Name     string  `json:"name" validate:"min=4,max=60"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"password"`
	Address  *string `json:"address" validate:"omitempty,max=400"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User      model.User
	Token     string
	ExpiresAt time.Time
}

var errInvalidCredentials = apperr.Unauthorized("invalid credentials")

// Register creates a USER account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Address = trimOptional(in.Address)
	if err := validate.Struct(in); err != nil {
		return AuthResult{}, err
	}

	u, err := createUser(ctx, s.users, s.cfg.BcryptCost, in.Name, in.Email, in.Password, in.Address, model.RoleUser)
	if err != nil {
		return AuthResult{}, err
	}
	return s.issue(u)
}

// Login verifies credentials. Missing fields, unknown email and wrong
// password all produce the same error and take comparable time.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		utils.VerifyPassword(s.dummy(), password)
		return AuthResult{}, errInvalidCredentials
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		utils.VerifyPassword(s.dummy(), password)
		return AuthResult{}, errInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return AuthResult{}, errInvalidCredentials
	}
	return s.issue(u)
}

// ChangePassword replaces the caller's password after checking the
// current one. On a mismatch the stored hash is left untouched.
func (s *AuthService) ChangePassword(ctx context.Context, id model.Identity, current, next string) error {
	u, err := s.users.GetByID(ctx, id.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("user not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, current) {
		return apperr.Unauthorized("incorrect current password")
	}
	if !validate.PasswordOK(next) {
		return apperr.Validation("password must be 8-16 characters, include at least one uppercase letter and one of " + validate.PasswordSymbols)
	}
	hash, err := utils.HashPassword(next, s.cfg.BcryptCost)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Authenticate validates a bearer token without touching the database.
// Every failure, including expiry, is the same UNAUTHORIZED error.
func (s *AuthService) Authenticate(raw string) (model.Identity, error) {
	id, err := utils.ParseAccessToken(s.cfg.Secret, raw)
	if err != nil {
		return model.Identity{}, apperr.Unauthorized("not authorized, token failed")
	}
	return id, nil
}

// Profile returns the caller's own account.
func (s *AuthService) Profile(ctx context.Context, id model.Identity) (model.User, error) {
	u, err := s.users.GetByID(ctx, id.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return model.User{}, apperr.Internal(err)
	}
	return u, nil
}

func (s *AuthService) issue(u model.User) (AuthResult, error) {
	tok, err := utils.NewAccessToken(s.cfg.Secret, u.ID, u.Role, s.cfg.TokenTTL)
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}
	return AuthResult{User: u, Token: tok.Token, ExpiresAt: tok.Exp}, nil
}

// dummy returns a hash to compare against when the email is unknown.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = utils.HashPassword("dummy-password#A", s.cfg.BcryptCost)
	})
	return s.dummyHash
}

// createUser hashes the password and inserts the account. Shared by
// self-registration and admin-created accounts.
func createUser(ctx context.Context, users UserStore, cost int, name, email, password string, address *string, role model.Role) (model.User, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, apperr.Internal(err)
	}
	u := model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Address:      address,
		Role:         role,
	}
	if err := users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, apperr.Conflict("user already exists")
		}
		return model.User{}, apperr.Internal(err)
	}
	return u, nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
