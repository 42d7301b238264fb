package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"password-dashboard/internal/domain"
	"password-dashboard/internal/repository"
)

func newCaptureRepo(t *testing.T) repository.CaptureRepository {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "captured.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewCaptureRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func TestCaptureRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newCaptureRepo(t)

	cred := &domain.CapturedCredential{WebURL: "https://example.com", Password: "hunter2!"}
	id, err := repo.Create(ctx, cred)
	require.NoError(t, err)
	assert.Equal(t, id, cred.ID)
	assert.False(t, cred.CreatedAt.IsZero())

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got.WebURL)
	assert.Equal(t, "hunter2!", got.Password)
}

func TestCaptureRepository_AutoIncrementAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := newCaptureRepo(t)

	first, err := repo.Create(ctx, &domain.CapturedCredential{WebURL: "a", Password: "1"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, &domain.CapturedCredential{WebURL: "b", Password: "2"})
	require.NoError(t, err)
	assert.Greater(t, second, first)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].WebURL)
	assert.Equal(t, "b", all[1].WebURL)
}

func TestCaptureRepository_GetMissing(t *testing.T) {
	repo := newCaptureRepo(t)
	_, err := repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCaptureRepository_InitIsIdempotent(t *testing.T) {
	repo := newCaptureRepo(t)
	assert.NoError(t, repo.Init(context.Background()))
}
