package database

import (
	"context"
	"path/filepath"
	"testing"

	"magazyn-plikow/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

// Funkcja pomocnicza do zakładania kont w testach.
func createTestUser(t *testing.T, store *Store, email string, limit int64) *models.User {
	t.Helper()

	user, err := store.CreateUser(context.Background(), CreateUserParams{
		ID:                uuid.New().String(),
		Email:             email,
		Name:              "Test User",
		PasswordHash:      "$2a$10$abcdefghijklmnopqrstuv",
		StorageLimitBytes: limit,
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	return user
}

func createTestFile(t *testing.T, store *Store, ownerID, name string, size int64) *models.File {
	t.Helper()

	file, err := store.CreateFile(context.Background(), CreateFileParams{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		OriginalName: name,
		StoredName:   uuid.New().String() + filepath.Ext(name),
		MimeType:     "application/octet-stream",
		SizeBytes:    size,
	})
	require.NoError(t, err)
	require.NotNil(t, file)

	return file
}
