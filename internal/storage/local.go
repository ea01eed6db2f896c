package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local writes blobs below root; references are urlPrefix + "/" + key, which
// the HTTP server serves statically.
type Local struct {
	root      string
	urlPrefix string
}

func NewLocal(root, urlPrefix string) *Local {
	return &Local{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (l *Local) Root() string { return l.root }

func (l *Local) Save(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}

	dst := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}

	return l.urlPrefix + "/" + key, nil
}
