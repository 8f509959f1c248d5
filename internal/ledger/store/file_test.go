package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/refassist/internal/ledger"
	"github.com/MrJamesThe3rd/refassist/internal/ledger/store"
)

func TestFileStore_ReadMissing(t *testing.T) {
	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.ReadBlob(context.Background(), ledger.BlobKey)
	assert.ErrorIs(t, err, ledger.ErrBlobNotFound)
}

func TestFileStore_WriteKeepsBackup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := store.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.WriteBlob(ctx, "k", []byte(`{"v":1}`)))
	require.NoError(t, s.WriteBlob(ctx, "k", []byte(`{"v":2}`)))

	got, err := s.ReadBlob(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))

	backup, err := os.ReadFile(filepath.Join(dir, "k.json.bak"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(backup))

	_, err = os.Stat(filepath.Join(dir, "k.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_BacksLedger(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fs, err := store.NewFileStore(dir)
	require.NoError(t, err)

	l, err := ledger.Open(ctx, fs)
	require.NoError(t, err)

	g, err := l.AddGame(ctx, ledger.NewGame{Date: "2024-05-01", Time: "10:00", Pay: decimal.NewFromInt(50)})
	require.NoError(t, err)

	reopened, err := ledger.Open(ctx, fs)
	require.NoError(t, err)

	got, ok := reopened.Game(g.ID)
	require.True(t, ok)
	assert.True(t, got.Pay.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, int64(1), reopened.State().LastID)
}

func TestFileStore_CorruptFileFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, ledger.BlobKey+".json"), []byte("garbage"), 0o600))

	fs, err := store.NewFileStore(dir)
	require.NoError(t, err)

	l, err := ledger.Open(ctx, fs)
	require.NoError(t, err)
	assert.Equal(t, ledger.Empty(), l.State())
}
