package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/capsulehq/capsule-api/internal/models"
	"github.com/capsulehq/capsule-api/internal/repo"
)

var (
	// ErrDuplicateIdentity means the username or email is already taken.
	ErrDuplicateIdentity = errors.New("username or email already in use")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service orchestrates registration and login: it owns the hashing and token
// issuance flow, and leaves storage to the user repo.
type Service struct {
	Users  *repo.UserRepo
	Hasher *PasswordHasher
	Codec  *TokenCodec
	TTL    time.Duration
}

func NewService(users *repo.UserRepo, hasher *PasswordHasher, codec *TokenCodec, ttl time.Duration) *Service {
	return &Service{Users: users, Hasher: hasher, Codec: codec, TTL: ttl}
}

// Register creates a user and returns a token bound to it. A taken username
// or email yields ErrDuplicateIdentity. The existence pre-checks give a clean
// error in the common case; the insert itself can still lose a race, so a
// unique-violation from the store maps to the same error.
func (s *Service) Register(ctx context.Context, username, email, password string) (string, *models.User, error) {
	if _, err := s.Users.GetByUsername(ctx, username); err == nil {
		return "", nil, ErrDuplicateIdentity
	} else if !errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("register: check username: %w", err)
	}
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return "", nil, ErrDuplicateIdentity
	} else if !errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("register: check email: %w", err)
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return "", nil, fmt.Errorf("register: hash password: %w", err)
	}

	user, err := s.Users.Create(ctx, username, email, hash)
	if err != nil {
		if repo.IsUniqueViolation(err) {
			return "", nil, ErrDuplicateIdentity
		}
		return "", nil, fmt.Errorf("register: create user: %w", err)
	}

	token, err := s.Codec.Issue(user.ID, s.TTL)
	if err != nil {
		return "", nil, fmt.Errorf("register: issue token: %w", err)
	}

	return token, user, nil
}

// Login verifies email+password and returns a fresh token. Unknown email and
// wrong password both return ErrInvalidCredentials; the unknown-email path
// still performs a hash verification so the failure cannot be told apart by
// timing either.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.Hasher.DummyVerify(password)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: lookup user: %w", err)
	}

	if !s.Hasher.Verify(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.Codec.Issue(user.ID, s.TTL)
	if err != nil {
		return "", nil, fmt.Errorf("login: issue token: %w", err)
	}

	return token, user, nil
}
