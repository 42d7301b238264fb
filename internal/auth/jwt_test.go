package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService("test-secret", TokenTTLs{
		Session:  time.Hour,
		Remember: 48 * time.Hour,
		Reset:    30 * time.Minute,
	})
}

func TestSessionToken_RoundTrip(t *testing.T) {
	s := newTestService()

	token, issued, err := s.GenerateSessionToken(7, true)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := s.ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.True(t, claims.Remember)
	assert.Equal(t, issued.ID, claims.ID)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestSessionToken_Expired(t *testing.T) {
	s := newTestService()
	start := time.Now()
	s.SetClock(func() time.Time { return start })

	token, _, err := s.GenerateSessionToken(1, false)
	require.NoError(t, err)

	s.SetClock(func() time.Time { return start.Add(2 * time.Hour) })
	_, err = s.ParseSessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionToken_WrongSecret(t *testing.T) {
	token, _, err := newTestService().GenerateSessionToken(1, false)
	require.NoError(t, err)

	other := NewJWTService("another-secret", TokenTTLs{})
	_, err = other.ParseSessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_AudienceSeparation(t *testing.T) {
	s := newTestService()

	reset, err := s.GenerateResetToken(3, 0)
	require.NoError(t, err)
	_, err = s.ParseSessionToken(reset)
	assert.ErrorIs(t, err, ErrInvalidToken)

	session, _, err := s.GenerateSessionToken(3, false)
	require.NoError(t, err)
	_, err = s.ParseResetToken(session)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetToken_RoundTrip(t *testing.T) {
	s := newTestService()

	token, err := s.GenerateResetToken(11, 4)
	require.NoError(t, err)

	claims, err := s.ParseResetToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(11), claims.UserID)
	assert.Equal(t, int64(4), claims.PasswordVersion)
}

func TestResetToken_TamperedAndExpired(t *testing.T) {
	s := newTestService()
	start := time.Now()
	s.SetClock(func() time.Time { return start })

	token, err := s.GenerateResetToken(11, 0)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)
	_, err = s.ParseResetToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.ParseResetToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	s.SetClock(func() time.Time { return start.Add(31 * time.Minute) })
	_, err = s.ParseResetToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
