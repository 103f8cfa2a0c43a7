// Package localmedia keeps diagnosis photos on local disk when no bucket is
// configured. Keys are the same slash-separated object keys the bucket uses.
package localmedia

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

type Archive struct {
	root string
	log  *logger.Logger
}

func NewArchive(root string, log *logger.Logger) (*Archive, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("media directory is empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &Archive{root: abs, log: log.With("service", "LocalMediaArchive")}, nil
}

// Put writes data under key. contentType is implied by the key's extension.
func (a *Archive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := a.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	a.log.Debug("stored media", "key", key, "bytes", len(data), "content_type", contentType)
	return nil
}

func (a *Archive) path(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("object key is empty")
	}
	p := filepath.Join(a.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(a.root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("object key %q escapes the media directory", key)
	}
	return p, nil
}
