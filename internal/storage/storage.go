// Package storage persists uploaded blobs (voice recordings, profile
// pictures) either on local disk or in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"voice-ai-go/internal/config"
)

// Blobs stores a blob under key and returns the reference clients use to
// fetch it.
type Blobs interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// New picks the backend from STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (Blobs, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocal(cfg.UploadDir, "/uploads"), nil
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Key builds a unique object key: <prefix>/<uuid>_<sanitised name>.
func Key(prefix, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	return fmt.Sprintf("%s/%s_%s", prefix, uuid.NewString(), name)
}
