// Package users implements the credential store: registration with a salted
// slow password hash, and credential verification that never reveals whether
// the email or the password was the failing half.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum accepted raw password length
const MinPasswordLength = 8

// passwordHashCost tunes bcrypt so hashing takes tens of milliseconds
const passwordHashCost = bcrypt.DefaultCost

var (
	// ErrValidation wraps all bad-input rejections; the wrapped message
	// carries the detail
	ErrValidation = errors.New("invalid input")
	// ErrInvalidCredentials is returned for a failed login regardless of
	// whether the email or the password was wrong
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// dummyHash keeps the bcrypt comparison on the missing-user path so a login
// against an unknown email fails in comparable time to a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), passwordHashCost)

// Service defines the credential store operations
type Service interface {
	Register(ctx context.Context, email, password string) (*User, error)
	VerifyCredentials(ctx context.Context, email, password string) (*User, error)
}

type service struct {
	store Store
}

// NewService creates a credential store service over the given user store
func NewService(store Store) Service {
	return &service{store: store}
}

// Register validates the signup input, hashes the password, and persists the
// user. The raw password is never stored or logged.
func (s *service) Register(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// VerifyCredentials looks up the user by email and compares the raw password
// against the stored hash in constant time. A missing user and a wrong
// password produce the same error.
func (s *service) VerifyCredentials(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
