package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-md2docx/internal/fileutil"
)

// LocalBackend stores artifacts as files under a directory. It has no
// expiry: files live until Delete.
type LocalBackend struct {
	dir    string
	logger *zap.Logger
}

// NewLocalBackend creates a LocalBackend rooted at cfg.LocalDir. The
// directory is created on the first Put.
func NewLocalBackend(cfg Config) (*LocalBackend, error) {
	if cfg.LocalDir == "" {
		return nil, fmt.Errorf("%w: local directory is required", ErrInvalidConfig)
	}
	dir, err := filepath.Abs(cfg.LocalDir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %v", ErrInvalidConfig, cfg.LocalDir, err)
	}
	return &LocalBackend{
		dir:    dir,
		logger: cfg.logger(),
	}, nil
}

// Backend returns BackendLocal.
func (b *LocalBackend) Backend() Backend { return BackendLocal }

// Dir returns the absolute storage directory.
func (b *LocalBackend) Dir() string { return b.dir }

// Put writes data atomically and returns a file:// locator.
func (b *LocalBackend) Put(ctx context.Context, data []byte, ext string, ttl time.Duration) (string, error) {
	art, err := newArtifact(data, ext, ttl)
	if err != nil {
		return "", &Error{Op: "put", Err: err}
	}
	if art.TTL != 0 {
		if err := ValidateTTL(art.TTL); err != nil {
			return "", &Error{Op: "put", Key: art.Key, Err: err}
		}
	}
	if err := ctx.Err(); err != nil {
		return "", &Error{Op: "put", Key: art.Key, Err: err}
	}

	path := filepath.Join(b.dir, art.Key)
	if err := fileutil.WriteFileAtomic(path, art.Data, 0o600); err != nil {
		return "", &Error{Op: "put", Key: art.Key, Err: err}
	}

	b.logger.Debug("stored artifact",
		zap.String("key", art.Key),
		zap.String("content_type", art.ContentType),
		zap.Int("size", len(art.Data)))

	return fileLocator(path), nil
}

// Delete removes the file behind a file:// locator. Missing files and
// locators of other schemes report true; file:// paths outside the
// storage directory are refused.
func (b *LocalBackend) Delete(_ context.Context, locator string) (bool, error) {
	u, err := url.Parse(locator)
	if err != nil || u.Scheme != "file" {
		return true, nil
	}

	path := filepath.FromSlash(u.Path)
	if !fileutil.IsPathUnder(path, b.dir) {
		return false, &Error{Op: "delete", Key: path, Err: ErrForeignLocator}
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, &Error{Op: "delete", Key: path, Err: err}
	}

	b.logger.Debug("deleted artifact", zap.String("path", path))
	return true, nil
}

func fileLocator(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
