// Package storage holds listing photo files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// ErrInvalidKey is returned for keys that do not name a file inside the store.
var ErrInvalidKey = errors.New("invalid file key")

// FileStore removes stored listing photos.
type FileStore interface {
	Delete(ctx context.Context, key string) error
}

// AferoStore keeps photos under a root directory of an afero filesystem.
type AferoStore struct {
	fs afero.Fs
}

// NewAferoStore roots the store at dir on fs, creating the directory if needed.
func NewAferoStore(fs afero.Fs, dir string) (*AferoStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir %s: %w", dir, err)
	}
	return &AferoStore{fs: afero.NewBasePathFs(fs, dir)}, nil
}

// NewOsStore roots the store at dir on the local disk.
func NewOsStore(dir string) (*AferoStore, error) {
	return NewAferoStore(afero.NewOsFs(), dir)
}

// Delete removes the file referenced by key. Keys may be bare relative paths
// or photo URLs; only the URL path is used. A missing file wraps os.ErrNotExist.
func (s *AferoStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, err := normalizeKey(key)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("photo %q: %w", key, os.ErrNotExist)
		}
		return fmt.Errorf("failed to delete photo %q: %w", key, err)
	}
	return nil
}

// Ping reports whether the store root is still a reachable directory.
func (s *AferoStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := s.fs.Stat("/")
	if err != nil {
		return fmt.Errorf("uploads dir unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("uploads root is not a directory")
	}
	return nil
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if u, err := url.Parse(key); err == nil && u.Scheme != "" {
		key = u.Path
	}

	name := path.Clean("/" + strings.TrimPrefix(key, "/uploads/"))
	if name == "/" {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return name, nil
}
