package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"password-dashboard/internal/domain"
	"password-dashboard/internal/repository"
)

// CredentialInput carries the fields of a saved site credential.
type CredentialInput struct {
	WebAddress string
	Username   string
	Email      string
	Password   string
}

// CredentialService manages the site credentials a user owns. A credential
// that belongs to someone else behaves exactly like one that does not exist.
type CredentialService interface {
	Add(ctx context.Context, ownerID int64, in CredentialInput) (*domain.SiteCredential, error)
	List(ctx context.Context, ownerID int64) ([]domain.SiteCredential, error)
	Get(ctx context.Context, id, ownerID int64) (*domain.SiteCredential, error)
	Update(ctx context.Context, id, ownerID int64, in CredentialInput) (*domain.SiteCredential, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

type credentialService struct {
	store repository.Store
}

func NewCredentialService(store repository.Store) CredentialService {
	return &credentialService{store: store}
}

func (s *credentialService) Add(ctx context.Context, ownerID int64, in CredentialInput) (*domain.SiteCredential, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return nil, err
	}

	cred := &domain.SiteCredential{
		WebAddress: in.WebAddress,
		Username:   in.Username,
		Email:      in.Email,
		Password:   in.Password,
		OwnerID:    ownerID,
	}
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Users().GetByID(ctx, ownerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUnauthenticated
			}
			return fmt.Errorf("load owner: %w", err)
		}
		if err := tx.Credentials().Create(ctx, cred); err != nil {
			return fmt.Errorf("create credential: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cred, nil
}

func (s *credentialService) List(ctx context.Context, ownerID int64) ([]domain.SiteCredential, error) {
	creds, err := s.store.Credentials().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return creds, nil
}

func (s *credentialService) Get(ctx context.Context, id, ownerID int64) (*domain.SiteCredential, error) {
	cred, err := s.store.Credentials().GetForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}
	return cred, nil
}

func (s *credentialService) Update(ctx context.Context, id, ownerID int64, in CredentialInput) (*domain.SiteCredential, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *domain.SiteCredential
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		cred, err := tx.Credentials().GetForOwner(ctx, id, ownerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load credential: %w", err)
		}
		cred.WebAddress = in.WebAddress
		cred.Username = in.Username
		cred.Email = in.Email
		cred.Password = in.Password
		if err := tx.Credentials().Update(ctx, cred); err != nil {
			return fmt.Errorf("update credential: %w", err)
		}
		updated = cred
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *credentialService) Delete(ctx context.Context, id, ownerID int64) error {
	return s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Credentials().GetForOwner(ctx, id, ownerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load credential: %w", err)
		}
		if err := tx.Credentials().Delete(ctx, id, ownerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("delete credential: %w", err)
		}
		return nil
	})
}

func (in CredentialInput) normalized() CredentialInput {
	return CredentialInput{
		WebAddress: strings.TrimSpace(in.WebAddress),
		Username:   strings.TrimSpace(in.Username),
		Email:      strings.TrimSpace(in.Email),
		Password:   in.Password,
	}
}

func (in CredentialInput) validate() error {
	ve := &ValidationError{}
	checkRequired(ve, "webaddress", in.WebAddress)
	checkRequired(ve, "username", in.Username)
	checkEmail(ve, "email", in.Email)
	checkPassword(ve, "password", in.Password)
	return ve.OrNil()
}
