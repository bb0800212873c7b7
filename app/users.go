package app

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/starfeed/starfeed/adapters/auth"
	"github.com/starfeed/starfeed/ports"
)

// Account flow errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserSuspended      = errors.New("account suspended")
)

// UserService handles accounts and admin login.
type UserService struct {
	users  ports.UserStore
	hasher ports.Hasher
	tokens *auth.TokenService
	clock  ports.Clock
	idGen  ports.IDGenerator
	logger zerolog.Logger
}

// NewUserService creates a user service.
func NewUserService(users ports.UserStore, hasher ports.Hasher, tokens *auth.TokenService, clock ports.Clock, idGen ports.IDGenerator, logger zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		clock:  clock,
		idGen:  idGen,
		logger: logger,
	}
}

// Register creates a user account.
func (s *UserService) Register(ctx context.Context, email, name, password, role string) (ports.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return ports.User{}, errors.New("valid email is required")
	}
	if role == "" {
		role = "user"
	}

	var hash []byte
	if password != "" {
		var err error
		hash, err = s.hasher.Hash(password)
		if err != nil {
			return ports.User{}, err
		}
	}

	now := s.clock.Now().UTC()
	u := ports.User{
		ID:           "user_" + s.idGen.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return ports.User{}, err
	}

	s.logger.Info().Str("user_id", u.ID).Str("role", role).Msg("user registered")
	return u, nil
}

// Login verifies credentials and issues an admin token.
// Unknown email and wrong password are indistinguishable.
func (s *UserService) Login(ctx context.Context, email, password string) (string, ports.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", ports.User{}, ErrInvalidCredentials
	}
	if len(u.PasswordHash) == 0 || !s.hasher.Compare(u.PasswordHash, password) {
		return "", ports.User{}, ErrInvalidCredentials
	}
	if u.Status != "active" {
		return "", ports.User{}, ErrUserSuspended
	}

	token, err := s.tokens.GenerateToken(u.ID, u.Email, u.Role, s.clock.Now())
	if err != nil {
		return "", ports.User{}, err
	}
	return token, u, nil
}
