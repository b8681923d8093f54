package database

import (
	"context"
	"testing"

	"magazyn-plikow/internal/models"

	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "jan@example.com", models.DefaultStorageLimitBytes)
	require.Equal(t, int64(0), user.StorageUsedBytes)
	require.Equal(t, models.DefaultStorageLimitBytes, user.StorageLimitBytes)
	require.False(t, user.CreatedAt.IsZero())

	found, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, user.Email, found.Email)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store := newTestStore(t)

	createTestUser(t, store, "taken@example.com", models.DefaultStorageLimitBytes)

	_, err := store.CreateUser(context.Background(), CreateUserParams{
		ID:                "another-id",
		Email:             "taken@example.com",
		Name:              "Someone Else",
		PasswordHash:      "hash",
		StorageLimitBytes: models.DefaultStorageLimitBytes,
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestGetUserByEmail_CaseSensitive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "Jan@Example.com", models.DefaultStorageLimitBytes)

	found, err := store.GetUserByEmail(ctx, "Jan@Example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, user.ID, found.ID)

	// Porównanie jest case-sensitive, tak jak w oryginalnym backendzie.
	missing, err := store.GetUserByEmail(ctx, "jan@example.com")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	store := newTestStore(t)

	user, err := store.GetUserByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestAdjustUsage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "quota@example.com", 100)

	require.NoError(t, store.AdjustUsage(ctx, user.ID, 60))

	found, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(60), found.StorageUsedBytes)

	t.Run("exceeding the limit is rejected without partial update", func(t *testing.T) {
		err := store.AdjustUsage(ctx, user.ID, 41)
		require.ErrorIs(t, err, ErrQuotaExceeded)

		found, err := store.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, int64(60), found.StorageUsedBytes)
	})

	t.Run("exactly up to the limit is allowed", func(t *testing.T) {
		require.NoError(t, store.AdjustUsage(ctx, user.ID, 40))

		found, err := store.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, int64(100), found.StorageUsedBytes)

		require.NoError(t, store.AdjustUsage(ctx, user.ID, -100))
	})

	t.Run("usage can never go negative", func(t *testing.T) {
		err := store.AdjustUsage(ctx, user.ID, -1)
		require.ErrorIs(t, err, ErrNegativeUsage)
	})

	t.Run("unknown account", func(t *testing.T) {
		err := store.AdjustUsage(ctx, "no-such-id", 10)
		require.ErrorIs(t, err, ErrNotFound)
	})
}
