package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"password-dashboard/internal/auth"
	"password-dashboard/internal/domain"
)

func TestSessionService_IssueAndResolve(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(newTestStore(t), newQuietSender(), nil, quietLogger())
	alice := registerUser(t, users, "Alice", "alice@example.com", "abc12!")

	revoked := &MockRevocationStore{}
	revoked.On("IsRevoked", mock.Anything, mock.Anything).Return(false, nil)
	tokens := auth.NewJWTService("secret", auth.TokenTTLs{Session: time.Hour, Remember: 48 * time.Hour})
	sessions := NewSessionService(tokens, revoked, users, quietLogger())

	s, err := sessions.Issue(ctx, alice, false)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, 5*time.Second)

	remembered, err := sessions.Issue(ctx, alice, true)
	require.NoError(t, err)
	assert.True(t, remembered.Remember)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), remembered.ExpiresAt, 5*time.Second)

	user, err := sessions.Resolve(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	_, err = sessions.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSessionService_RevokedSession(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(newTestStore(t), newQuietSender(), nil, quietLogger())
	alice := registerUser(t, users, "Alice", "alice@example.com", "abc12!")

	tokens := auth.NewJWTService("secret", auth.TokenTTLs{})
	revoked := &MockRevocationStore{}
	sessions := NewSessionService(tokens, revoked, users, quietLogger())

	s, err := sessions.Issue(ctx, alice, false)
	require.NoError(t, err)
	claims, err := tokens.ParseSessionToken(s.Token)
	require.NoError(t, err)

	revoked.On("Revoke", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 11*time.Hour && ttl <= 12*time.Hour
	})).Return(nil).Once()
	sessions.Revoke(ctx, s.Token)

	revoked.On("IsRevoked", mock.Anything, claims.ID).Return(true, nil)
	_, err = sessions.Resolve(ctx, s.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// garbage tokens are ignored
	sessions.Revoke(ctx, "garbage")
	revoked.AssertExpectations(t)
}

func TestSessionService_CacheFailureDoesNotLockOut(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(newTestStore(t), newQuietSender(), nil, quietLogger())
	alice := registerUser(t, users, "Alice", "alice@example.com", "abc12!")

	revoked := &MockRevocationStore{}
	revoked.On("IsRevoked", mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
	revoked.On("Revoke", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
	sessions := NewSessionService(auth.NewJWTService("secret", auth.TokenTTLs{}), revoked, users, quietLogger())

	s, err := sessions.Issue(ctx, alice, false)
	require.NoError(t, err)
	sessions.Revoke(ctx, s.Token)

	user, err := sessions.Resolve(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)
}

func TestSessionService_DeletedUser(t *testing.T) {
	users := NewUserService(newTestStore(t), nil, nil, quietLogger())
	tokens := auth.NewJWTService("secret", auth.TokenTTLs{})
	sessions := NewSessionService(tokens, nil, users, quietLogger())

	token, _, err := tokens.GenerateSessionToken(77, false)
	require.NoError(t, err)
	_, err = sessions.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = sessions.Issue(context.Background(), nil, false)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

// unavailableUsers fails every user lookup with a storage error.
type unavailableUsers struct {
	UserService
}

func (unavailableUsers) GetByID(context.Context, int64) (*domain.User, error) {
	return nil, errors.New("database is locked")
}

func TestSessionService_LookupFailureIsNotUnauthenticated(t *testing.T) {
	tokens := auth.NewJWTService("secret", auth.TokenTTLs{})
	sessions := NewSessionService(tokens, nil, unavailableUsers{}, quietLogger())

	token, _, err := tokens.GenerateSessionToken(1, false)
	require.NoError(t, err)

	_, err = sessions.Resolve(context.Background(), token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}
