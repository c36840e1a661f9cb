package images

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const cloudObjectPrefix = "receipts"

// CloudStore persists images in a Google Cloud Storage bucket and hands out
// time-limited signed URLs instead of raw object paths.
type CloudStore struct {
	client *storage.Client
	bucket string
	logger *slog.Logger
}

// NewCloudStore creates a CloudStore for the given bucket. When credentialsFile
// is empty, application default credentials are used.
func NewCloudStore(ctx context.Context, bucket, credentialsFile string, logger *slog.Logger) (*CloudStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	return &CloudStore{client: client, bucket: bucket, logger: logger}, nil
}

// Save uploads the content to the bucket and returns a signed URL valid for
// 24 hours from issuance.
func (s *CloudStore) Save(ctx context.Context, r io.Reader, filename string) (Stored, error) {
	if !IsAllowedExtension(filename) {
		return Stored{}, ErrInvalidFileType
	}

	key := cloudObjectPrefix + "/" + storageKey(filename, time.Now())

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	size, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return Stored{}, fmt.Errorf("upload image: %w", err)
	}
	if err := w.Close(); err != nil {
		return Stored{}, fmt.Errorf("finish upload: %w", err)
	}

	signedURL, err := s.client.Bucket(s.bucket).SignedURL(key, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(signedURLExpiry),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return Stored{}, fmt.Errorf("sign image url: %w", err)
	}

	return Stored{
		ObjectName: key,
		SignedURL:  signedURL,
		Size:       size,
		Extension:  strings.ToLower(filepath.Ext(filename)),
	}, nil
}

// PurgeOlderThan deletes objects under the upload prefix whose last update
// precedes the cutoff. Per-object failures are logged and the scan continues.
func (s *CloudStore) PurgeOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: cloudObjectPrefix + "/"})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return removed, fmt.Errorf("list uploads: %w", err)
		}

		if attrs.Updated.After(cutoff) {
			continue
		}

		if err := s.client.Bucket(s.bucket).Object(attrs.Name).Delete(ctx); err != nil {
			s.logger.Warn("purge object failed", "object", attrs.Name, "error", err)
			continue
		}
		removed++
	}

	return removed, nil
}

// Close releases the underlying storage client.
func (s *CloudStore) Close() error {
	return s.client.Close()
}
