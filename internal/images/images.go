package images

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidFileType is returned for filenames outside the image allow-list.
	ErrInvalidFileType = errors.New("file type not allowed")
	// ErrNotFound is returned when a stored image path does not exist.
	ErrNotFound = errors.New("image not found")
)

// signedURLExpiry bounds how long a remote image link stays readable.
const signedURLExpiry = 24 * time.Hour

var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
}

// IsAllowedExtension reports whether the filename carries an allowed image
// extension. Filenames without an extension fail closed.
func IsAllowedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}
	_, ok := allowedExtensions[ext]
	return ok
}

// Stored describes a persisted image: either a local file (Path set) or a
// remote object (ObjectName and SignedURL set), never both.
type Stored struct {
	Path       string `json:"path,omitempty"`
	ObjectName string `json:"objectName,omitempty"`
	SignedURL  string `json:"url,omitempty"`
	Size       int64  `json:"size"`
	Extension  string `json:"extension"`
}

// Store persists uploaded images and reclaims stale ones.
type Store interface {
	Save(ctx context.Context, r io.Reader, filename string) (Stored, error)
	PurgeOlderThan(ctx context.Context, maxAge time.Duration) (int, error)
}

// storageKey builds a collision-resistant key: a date prefix, a random
// identifier, and the sanitized original filename.
func storageKey(filename string, now time.Time) string {
	name := sanitizeFilename(filename)
	return now.Format("2006/01/02") + "/" + uuid.New().String() + "_" + name
}

// sanitizeFilename strips path components and any character outside
// [a-zA-Z0-9._-] from the original filename.
func sanitizeFilename(filename string) string {
	base := filepath.Base(filepath.ToSlash(filename))
	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
