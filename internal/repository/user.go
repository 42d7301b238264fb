package repository

import (
	"context"
	"errors"

	"password-dashboard/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert or update violates a unique constraint.
	ErrDuplicate = errors.New("record already exists")
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	// UpdatePassword replaces the hash and bumps the password version, but only
	// while the stored version still equals expectedVersion. ErrNotFound otherwise.
	UpdatePassword(ctx context.Context, id int64, hash string, expectedVersion int64) error
}
