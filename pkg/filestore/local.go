// Package filestore keeps the raw bytes of uploaded documents, either on
// the local filesystem or in an S3 bucket.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/xhad/docsearch/internal/types"
)

type LocalConfig struct {
	Dir string
}

// Local stores files under a single directory. Keys are the file names
// relative to that directory.
type Local struct {
	dir string
}

var _ types.FileStore = (*Local)(nil)

func NewLocalWithConfig(config LocalConfig) (*Local, error) {
	if config.Dir == "" {
		config.Dir = "media"
	}
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Local{dir: config.Dir}, nil
}

func (l *Local) Save(ctx context.Context, name string, data []byte) (string, error) {
	key := NewKey(name)
	if err := os.WriteFile(filepath.Join(l.dir, key), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}
	return key, nil
}

func (l *Local) Read(ctx context.Context, key string) ([]byte, error) {
	path, err := l.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file %s: %w", key, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (l *Local) Remove(ctx context.Context, key string) error {
	path, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (l *Local) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid file key %q", key)
	}
	return filepath.Join(l.dir, key), nil
}

// NewKey derives a unique storage key from an uploaded file name. Any
// directory part of name is dropped.
func NewKey(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20 || r == '/' || r == 0x7f:
			return -1
		}
		return r
	}, base)
	if base == "" || base == "." || base == ".." || base == "/" {
		base = "document.pdf"
	}
	return uuid.NewString()[:8] + "-" + base
}
