package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"password-dashboard/internal/avatar"
	"password-dashboard/internal/domain"
	"password-dashboard/internal/mailer"
	"password-dashboard/internal/repository"
	"password-dashboard/internal/storage"
)

const (
	nameMinLength = 2
	nameMaxLength = 20
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AccountInput carries the account form. Picture is nil when no file was uploaded.
type AccountInput struct {
	Name    string
	Email   string
	Picture io.Reader
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateAccount(ctx context.Context, id int64, in AccountInput) (*domain.User, error)
	PictureURL(ctx context.Context, user *domain.User) string
}

type userService struct {
	store    repository.Store
	mail     mailer.Sender
	pictures storage.Service
	logger   *logrus.Logger
}

func NewUserService(store repository.Store, mail mailer.Sender, pictures storage.Service, logger *logrus.Logger) UserService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &userService{
		store:    store,
		mail:     mail,
		pictures: pictures,
		logger:   logger,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	ve := &ValidationError{}
	checkRequired(ve, "name", name)
	checkEmail(ve, "email", email)
	checkPassword(ve, "password", in.Password)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.store.Users().GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.sendWelcome(ctx, user)
	return sanitizeUser(user), nil
}

func (s *userService) sendWelcome(ctx context.Context, user *domain.User) {
	if s.mail == nil {
		return
	}
	msg := mailer.Message{
		To:      user.Email,
		Subject: "Welcome to Password Dashboard",
		Body: fmt.Sprintf("Hello %s,\n\nYour account has been created. You can now log in and start saving your site credentials.\n",
			user.Name),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.WithField("user_id", user.ID).Warnf("queue welcome email: %v", err)
	}
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) UpdateAccount(ctx context.Context, id int64, in AccountInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	ve := &ValidationError{}
	if checkRequired(ve, "name", name) {
		checkLength(ve, "name", name, nameMinLength, nameMaxLength)
	}
	checkEmail(ve, "email", email)

	var thumb *avatar.Image
	if in.Picture != nil {
		thumb, err = avatar.Thumbnail(in.Picture, avatar.DefaultSide)
		switch {
		case err == nil:
		case errors.Is(err, avatar.ErrTooLarge):
			ve.Add("picture", msgPictureTooLarge)
		default:
			if !errors.Is(err, avatar.ErrUnsupportedFormat) {
				s.logger.WithField("user_id", id).Debugf("decode picture: %v", err)
			}
			ve.Add("picture", "File does not have an approved extension: jpg, png")
		}
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if email != user.Email {
		if _, err := s.store.Users().GetByEmail(ctx, email); err == nil {
			return nil, ErrDuplicateEmail
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup email: %w", err)
		}
	}

	oldPicture := user.ImageFile
	newPicture := ""
	if thumb != nil {
		if s.pictures == nil {
			return nil, fmt.Errorf("picture storage is not configured")
		}
		newPicture = strings.ReplaceAll(uuid.NewString(), "-", "")[:16] + "." + thumb.Ext
		if err := s.pictures.Put(ctx, newPicture, bytes.NewReader(thumb.Data), thumb.ContentType); err != nil {
			return nil, fmt.Errorf("store picture: %w", err)
		}
		user.ImageFile = newPicture
	}

	user.Name = name
	user.Email = email
	if err := s.store.Users().UpdateProfile(ctx, user); err != nil {
		if newPicture != "" {
			s.deletePicture(ctx, newPicture)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if newPicture != "" && oldPicture != "" && oldPicture != newPicture {
		s.deletePicture(ctx, oldPicture)
	}
	return sanitizeUser(user), nil
}

func (s *userService) PictureURL(ctx context.Context, user *domain.User) string {
	if user == nil || user.ImageFile == "" || s.pictures == nil {
		return ""
	}
	url, err := s.pictures.URL(ctx, user.ImageFile)
	if err != nil {
		s.logger.WithField("user_id", user.ID).Warnf("resolve picture url: %v", err)
		return ""
	}
	return url
}

func (s *userService) deletePicture(ctx context.Context, key string) {
	if err := s.pictures.Delete(ctx, key); err != nil {
		s.logger.WithField("key", key).Warnf("delete picture: %v", err)
	}
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	out := *user
	out.PasswordHash = ""
	return &out
}
