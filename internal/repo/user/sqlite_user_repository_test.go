package user_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/fishpizzaria/internal/domain"
	"github.com/mkrupp/fishpizzaria/internal/repo/user"
)

func newTestRepo(t *testing.T) *user.SQLiteUserRepository {
	t.Helper()

	repo, err := user.NewSQLiteUserRepository(user.SQLiteUserRepositoryConfig{
		DatabasePath: filepath.Join(t.TempDir(), "users.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func TestSQLiteUserRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newTestRepo(t)

	ana := domain.Account{
		ID:           "0190d5e4-0000-7000-8000-000000000001",
		Name:         "Ana",
		Email:        "a@b.com",
		PasswordHash: []byte("hash"),
		CreatedAt:    time.Now().Unix(),
	}

	require.NoError(t, repo.CreateUser(ctx, ana))

	t.Run("get by email", func(t *testing.T) {
		got, err := repo.GetUserByEmail(ctx, "a@b.com")
		require.NoError(t, err)
		assert.Equal(t, ana, got)
	})

	t.Run("email lookup ignores case", func(t *testing.T) {
		got, err := repo.GetUserByEmail(ctx, "A@B.com")
		require.NoError(t, err)
		assert.Equal(t, ana.ID, got.ID)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetUserByID(ctx, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, ana.Email, got.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := ana
		dup.ID = "0190d5e4-0000-7000-8000-000000000002"

		err := repo.CreateUser(ctx, dup)
		require.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := repo.GetUserByEmail(ctx, "nobody@b.com")
		require.ErrorIs(t, err, domain.ErrUserNotFound)

		_, err = repo.GetUserByID(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
