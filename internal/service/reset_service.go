package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"password-dashboard/internal/auth"
	"password-dashboard/internal/domain"
	"password-dashboard/internal/mailer"
	"password-dashboard/internal/repository"
)

// ResetService implements the forgotten password flow. A token is bound to
// the password version it was issued for, so redeeming one invalidates it
// and every other outstanding token for that user.
type ResetService interface {
	RequestReset(ctx context.Context, email string) (string, error)
	VerifyReset(ctx context.Context, token string) (*domain.User, error)
	RedeemReset(ctx context.Context, token, newPassword string) error
}

type resetService struct {
	store   repository.Store
	tokens  *auth.JWTService
	mail    mailer.Sender
	baseURL string
	logger  *logrus.Logger
}

func NewResetService(store repository.Store, tokens *auth.JWTService, mail mailer.Sender, baseURL string, logger *logrus.Logger) ResetService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &resetService{
		store:   store,
		tokens:  tokens,
		mail:    mail,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// RequestReset issues a token for the account registered under email and
// queues the reset email. Unknown addresses yield an empty token and no error.
func (s *resetService) RequestReset(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)

	ve := &ValidationError{}
	checkEmail(ve, "email", email)
	if err := ve.OrNil(); err != nil {
		return "", err
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	token, err := s.tokens.GenerateResetToken(user.ID, user.PasswordVersion)
	if err != nil {
		return "", err
	}

	if s.mail != nil {
		msg := mailer.Message{
			To:      user.Email,
			Subject: "Password Reset Request",
			Body: fmt.Sprintf("To reset your password, visit the following link:\n%s\n\n"+
				"If you did not make this request then simply ignore this email and no changes will be made.\n",
				s.resetLink(token)),
		}
		if err := s.mail.Send(ctx, msg); err != nil {
			s.logger.WithField("user_id", user.ID).Warnf("queue reset email: %v", err)
		}
	}
	return token, nil
}

func (s *resetService) VerifyReset(ctx context.Context, token string) (*domain.User, error) {
	user, _, err := s.verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *resetService) RedeemReset(ctx context.Context, token, newPassword string) error {
	user, claims, err := s.verify(ctx, token)
	if err != nil {
		return err
	}

	ve := &ValidationError{}
	checkPassword(ve, "password", newPassword)
	if err := ve.OrNil(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		err := tx.Users().UpdatePassword(ctx, user.ID, string(hash), claims.PasswordVersion)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		if err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
}

func (s *resetService) verify(ctx context.Context, token string) (*domain.User, *auth.ResetClaims, error) {
	claims, err := s.tokens.ParseResetToken(token)
	if err != nil {
		return nil, nil, ErrInvalidOrExpiredToken
	}
	user, err := s.store.Users().GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidOrExpiredToken
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if user.PasswordVersion != claims.PasswordVersion {
		return nil, nil, ErrInvalidOrExpiredToken
	}
	return user, claims, nil
}

func (s *resetService) resetLink(token string) string {
	return s.baseURL + "/reset_password/" + token
}
