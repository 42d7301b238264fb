package gormstore

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"password-dashboard/internal/repository"
)

type store struct {
	db *gorm.DB
}

// NewStore builds the GORM-backed account store.
func NewStore(db *gorm.DB) repository.Store {
	return &store{db: db}
}

func (s *store) Users() repository.UserRepository {
	return NewUserRepository(s.db)
}

func (s *store) Credentials() repository.CredentialRepository {
	return NewCredentialRepository(s.db)
}

// WithTransaction runs fn against repositories bound to a single transaction.
// The transaction is rolled back when fn returns an error.
func (s *store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &store{db: tx})
	})
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// sqlite and mysql report unique violations with different error types, but
// both mention it in the message.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate entry")
}
