package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"password-dashboard/internal/domain"
	"password-dashboard/internal/repository"
)

type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository builds a GORM-backed credential repository.
func NewCredentialRepository(db *gorm.DB) repository.CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Create(ctx context.Context, cred *domain.SiteCredential) error {
	if cred.OwnerID == 0 {
		return fmt.Errorf("insert credential: owner is required")
	}
	if err := r.db.WithContext(ctx).Omit("Owner").Create(cred).Error; err != nil {
		return fmt.Errorf("insert credential: %w", translateError(err))
	}
	return nil
}

func (r *credentialRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.SiteCredential, error) {
	var creds []domain.SiteCredential
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id").
		Find(&creds).Error; err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return creds, nil
}

func (r *credentialRepository) GetForOwner(ctx context.Context, id, ownerID int64) (*domain.SiteCredential, error) {
	var cred domain.SiteCredential
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&cred).Error; err != nil {
		return nil, translateError(err)
	}
	return &cred, nil
}

// Update writes the editable fields of cred. Callers load the row with
// GetForOwner first; mysql reports zero affected rows for unchanged values.
func (r *credentialRepository) Update(ctx context.Context, cred *domain.SiteCredential) error {
	res := r.db.WithContext(ctx).Model(&domain.SiteCredential{}).
		Where("id = ? AND owner_id = ?", cred.ID, cred.OwnerID).
		Updates(map[string]any{
			"web_address": cred.WebAddress,
			"username":    cred.Username,
			"email":       cred.Email,
			"password":    cred.Password,
		})
	if res.Error != nil {
		return fmt.Errorf("update credential: %w", res.Error)
	}
	return nil
}

func (r *credentialRepository) Delete(ctx context.Context, id, ownerID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&domain.SiteCredential{})
	if res.Error != nil {
		return fmt.Errorf("delete credential: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.CredentialRepository = (*credentialRepository)(nil)
