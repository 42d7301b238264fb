package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionAudience = "session"
	resetAudience   = "password-reset"
)

var (
	// ErrInvalidToken covers malformed, tampered, expired or misdirected tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// SessionClaims identify a logged-in user.
type SessionClaims struct {
	UserID   int64 `json:"uid"`
	Remember bool  `json:"rmb,omitempty"`
	jwt.RegisteredClaims
}

// ResetClaims authorize a single password change. PasswordVersion pins the
// token to the password it was issued against.
type ResetClaims struct {
	UserID          int64 `json:"uid"`
	PasswordVersion int64 `json:"pwv"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies session and password reset tokens.
type JWTService struct {
	secret      []byte
	sessionTTL  time.Duration
	rememberTTL time.Duration
	resetTTL    time.Duration
	now         func() time.Time
}

// TokenTTLs configures token lifetimes.
type TokenTTLs struct {
	Session  time.Duration
	Remember time.Duration
	Reset    time.Duration
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string, ttls TokenTTLs) *JWTService {
	if ttls.Session <= 0 {
		ttls.Session = 12 * time.Hour
	}
	if ttls.Remember <= 0 {
		ttls.Remember = 30 * 24 * time.Hour
	}
	if ttls.Reset <= 0 {
		ttls.Reset = 30 * time.Minute
	}
	return &JWTService{
		secret:      []byte(secret),
		sessionTTL:  ttls.Session,
		rememberTTL: ttls.Remember,
		resetTTL:    ttls.Reset,
		now:         time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (s *JWTService) SetClock(now func() time.Time) {
	s.now = now
}

// SessionTTL returns the lifetime of a session token.
func (s *JWTService) SessionTTL(remember bool) time.Duration {
	if remember {
		return s.rememberTTL
	}
	return s.sessionTTL
}

// GenerateSessionToken issues a session token for the user.
func (s *JWTService) GenerateSessionToken(userID int64, remember bool) (string, *SessionClaims, error) {
	now := s.now()
	claims := &SessionClaims{
		UserID:   userID,
		Remember: remember,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  jwt.ClaimStrings{sessionAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.SessionTTL(remember))),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	return token, claims, nil
}

// ParseSessionToken validates a session token and returns its claims.
func (s *JWTService) ParseSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := s.parse(tokenString, claims, sessionAudience); err != nil {
		return nil, err
	}
	if claims.UserID <= 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateResetToken issues a password reset token bound to the user's current password version.
func (s *JWTService) GenerateResetToken(userID, passwordVersion int64) (string, error) {
	now := s.now()
	claims := &ResetClaims{
		UserID:          userID,
		PasswordVersion: passwordVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  jwt.ClaimStrings{resetAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.resetTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return token, nil
}

// ParseResetToken validates signature, audience and expiry of a reset token.
// The password version still has to be compared against the stored user.
func (s *JWTService) ParseResetToken(tokenString string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := s.parse(tokenString, claims, resetAudience); err != nil {
		return nil, err
	}
	if claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims, audience string) error {
	if tokenString == "" {
		return ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
