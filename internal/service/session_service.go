package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"password-dashboard/internal/auth"
	"password-dashboard/internal/domain"
)

// Session is an issued login token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Remember  bool
}

// SessionService issues, resolves and revokes login sessions.
type SessionService interface {
	Issue(ctx context.Context, user *domain.User, remember bool) (*Session, error)
	Resolve(ctx context.Context, token string) (*domain.User, error)
	Revoke(ctx context.Context, token string)
}

type sessionService struct {
	tokens  *auth.JWTService
	revoked auth.RevocationStore
	users   UserService
	logger  *logrus.Logger
}

func NewSessionService(tokens *auth.JWTService, revoked auth.RevocationStore, users UserService, logger *logrus.Logger) SessionService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &sessionService{
		tokens:  tokens,
		revoked: revoked,
		users:   users,
		logger:  logger,
	}
}

func (s *sessionService) Issue(_ context.Context, user *domain.User, remember bool) (*Session, error) {
	if user == nil || user.ID <= 0 {
		return nil, ErrUnauthenticated
	}
	token, claims, err := s.tokens.GenerateSessionToken(user.ID, remember)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Remember:  remember,
	}, nil
}

// Resolve returns the user behind a session token. Missing, expired, revoked
// tokens and tokens of deleted users all yield ErrUnauthenticated.
func (s *sessionService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.ParseSessionToken(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Warnf("check session revocation: %v", err)
		}
		if revoked {
			return nil, ErrUnauthenticated
		}
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

// Revoke blacklists the token until it would have expired. Invalid tokens
// and cache failures are ignored.
func (s *sessionService) Revoke(ctx context.Context, token string) {
	if s.revoked == nil {
		return
	}
	claims, err := s.tokens.ParseSessionToken(token)
	if err != nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		s.logger.Warnf("revoke session: %v", err)
	}
}
