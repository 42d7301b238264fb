package service

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"password-dashboard/internal/domain"
	"password-dashboard/internal/mailer"
	"password-dashboard/internal/repository"
	"password-dashboard/internal/repository/gormstore"
)

// MockSender is a mock implementation of mailer.Sender.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockStorage is a mock implementation of storage.Service.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) URL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// MockRevocationStore is a mock implementation of auth.RevocationStore.
type MockRevocationStore struct {
	mock.Mock
}

func (m *MockRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockCaptureRepository is a mock implementation of repository.CaptureRepository.
type MockCaptureRepository struct {
	mock.Mock
}

func (m *MockCaptureRepository) Init(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCaptureRepository) Create(ctx context.Context, cred *domain.CapturedCredential) (int64, error) {
	args := m.Called(ctx, cred)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCaptureRepository) Get(ctx context.Context, id int64) (*domain.CapturedCredential, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CapturedCredential), args.Error(1)
}

func (m *MockCaptureRepository) List(ctx context.Context) ([]domain.CapturedCredential, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CapturedCredential), args.Error(1)
}

func newTestStore(t *testing.T) repository.Store {
	t.Helper()
	db, err := gormstore.Open(gormstore.Options{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "accounts.db")})
	require.NoError(t, err)
	require.NoError(t, gormstore.Migrate(db))
	t.Cleanup(func() { _ = gormstore.Close(db) })
	return gormstore.NewStore(db)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// registerUser creates an account without asserting on the welcome email.
func registerUser(t *testing.T, users UserService, name, email, password string) *domain.User {
	t.Helper()
	user, err := users.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: password})
	require.NoError(t, err)
	return user
}

func newQuietSender() *MockSender {
	m := &MockSender{}
	m.On("Send", mock.Anything, mock.Anything).Return(nil)
	return m
}
