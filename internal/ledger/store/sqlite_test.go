package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/refassist/internal/database"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
	"github.com/MrJamesThe3rd/refassist/internal/ledger/store"
)

func newSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "ref.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := store.NewSQLiteStore(context.Background(), db)
	require.NoError(t, err)

	return s
}

func TestSQLiteStore_ReadMissing(t *testing.T) {
	s := newSQLiteStore(t)

	_, err := s.ReadBlob(context.Background(), ledger.BlobKey)
	assert.ErrorIs(t, err, ledger.ErrBlobNotFound)
}

func TestSQLiteStore_Upsert(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	require.NoError(t, s.WriteBlob(ctx, "k", []byte("one")))
	require.NoError(t, s.WriteBlob(ctx, "k", []byte("two")))
	require.NoError(t, s.WriteBlob(ctx, "other", []byte("three")))

	got, err := s.ReadBlob(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	got, err = s.ReadBlob(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "three", string(got))
}
