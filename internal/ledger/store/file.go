package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

const (
	backupSuffix    = ".bak"
	tmpSuffix       = ".tmp"
	filePermissions = 0o600
)

// FileStore keeps each blob in <dir>/<key>.json. Writes go through a
// temporary file and a rename so a crash never leaves a torn blob; the
// previous version is kept as <key>.json.bak.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

// Path returns the file the blob for key lives in.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) ReadBlob(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ledger.ErrBlobNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	return data, nil
}

func (s *FileStore) WriteBlob(_ context.Context, key string, data []byte) error {
	path := s.Path(key)

	tmp := path + tmpSuffix
	if err := os.WriteFile(tmp, data, filePermissions); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := copyFile(path, path+backupSuffix); err != nil {
			slog.Warn("failed to back up blob", "key", key, "error", err)
		}
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", key, err)
	}

	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, filePermissions)
}
