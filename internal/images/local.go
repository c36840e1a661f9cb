package images

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"
)

// LocalStore persists images on local disk under a configured directory.
type LocalStore struct {
	dir    string
	logger *slog.Logger
}

// NewLocalStore creates a LocalStore rooted at dir.
func NewLocalStore(dir string, logger *slog.Logger) *LocalStore {
	return &LocalStore{dir: dir, logger: logger}
}

// Save writes the uploaded content under a collision-resistant key and
// returns the resulting local path.
func (s *LocalStore) Save(_ context.Context, r io.Reader, filename string) (Stored, error) {
	if !IsAllowedExtension(filename) {
		return Stored{}, ErrInvalidFileType
	}

	key := storageKey(filename, time.Now())
	path := filepath.Join(s.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Stored{}, fmt.Errorf("create upload directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return Stored{}, fmt.Errorf("create image file: %w", err)
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return Stored{}, fmt.Errorf("write image file: %w", err)
	}

	return Stored{
		Path:      path,
		Size:      size,
		Extension: strings.ToLower(filepath.Ext(filename)),
	}, nil
}

// ToBase64 reads the stored file and returns its base64 encoding.
func (s *LocalStore) ToBase64(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read image file: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// PurgeOlderThan deletes stored files whose modification time precedes the
// cutoff. Per-file failures are logged and do not abort the scan.
func (s *LocalStore) PurgeOlderThan(_ context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.logger.Warn("stat upload failed", "path", path, "error", err)
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			s.logger.Warn("purge upload failed", "path", path, "error", err)
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return removed, nil
		}
		return removed, fmt.Errorf("scan upload directory: %w", err)
	}

	return removed, nil
}
