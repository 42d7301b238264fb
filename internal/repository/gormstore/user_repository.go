package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"password-dashboard/internal/domain"
	"password-dashboard/internal/repository"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed user repository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("insert user: %w", translateError(err))
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"name":       user.Name,
			"email":      user.Email,
			"image_file": user.ImageFile,
		})
	if res.Error != nil {
		return fmt.Errorf("update user profile: %w", translateError(res.Error))
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, hash string, expectedVersion int64) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ? AND password_version = ?", id, expectedVersion).
		Updates(map[string]any{
			"password_hash":    hash,
			"password_version": gorm.Expr("password_version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("update user password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
