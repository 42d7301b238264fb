package repository

import (
	"context"

	"password-dashboard/internal/domain"
)

// CredentialRepository manages saved site credentials. Every lookup after
// creation is scoped to the owning user.
type CredentialRepository interface {
	Create(ctx context.Context, cred *domain.SiteCredential) error
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.SiteCredential, error)
	GetForOwner(ctx context.Context, id, ownerID int64) (*domain.SiteCredential, error)
	Update(ctx context.Context, cred *domain.SiteCredential) error
	Delete(ctx context.Context, id, ownerID int64) error
}

// Store groups the account repositories and runs them inside a transaction.
type Store interface {
	Users() UserRepository
	Credentials() CredentialRepository
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// CaptureRepository persists pairs pushed by the browser extension.
type CaptureRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, cred *domain.CapturedCredential) (int64, error)
	Get(ctx context.Context, id int64) (*domain.CapturedCredential, error)
	List(ctx context.Context) ([]domain.CapturedCredential, error)
}
