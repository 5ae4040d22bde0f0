// Package storage keeps media objects on the local filesystem and issues
// the time-limited retrieval URLs the catalog hands to clients.
package storage

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"
)

// LocalFS stores objects under a single base directory. The object key is
// the full media path ("media/{identity}/{name}").
type LocalFS struct {
	base string
}

func NewLocalFS(base string) (*LocalFS, error) {
	if base == "" {
		return nil, fmt.Errorf("no media directory configured")
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return nil, err
	}
	return &LocalFS{base: abs}, nil
}

func (l *LocalFS) Put(ctx context.Context, key string, r io.Reader) (string, int64, error) {
	path, err := l.objectPath(key)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", 0, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", 0, err
	}

	etag := hashBytes(data)
	return etag, int64(len(data)), nil
}

func (l *LocalFS) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	path, err := l.objectPath(key)
	if err != nil {
		return nil, 0, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	return f, st.Size(), nil
}

func (l *LocalFS) Delete(ctx context.Context, key string) error {
	path, err := l.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	// best-effort: drop empty identity directories
	_ = removeEmptyParents(filepath.Dir(path), l.base)
	return nil
}

func (l *LocalFS) objectPath(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	cleanKey := strings.TrimPrefix(filepath.Clean("/"+key), "/")
	p := filepath.Join(l.base, cleanKey)
	// prevent escape: the resolved path must stay under base
	if !strings.HasPrefix(filepath.Clean(p)+string(os.PathSeparator), filepath.Clean(l.base)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid object key")
	}
	return p, nil
}

func removeEmptyParents(dir, stop string) error {
	for {
		if dir == stop || dir == "/" || dir == "." || dir == "" {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return nil
		}
		if err := os.Remove(dir); err != nil {
			return nil
		}
		dir = filepath.Dir(dir)
	}
}

func hashBytes(data []byte) string {
	sum := xxh3.Hash128(data).Bytes()
	return hex.EncodeToString(sum[:])
}
