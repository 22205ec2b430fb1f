// Package storage uploads generated documents and hands out locators for them.
//
// Two backends exist: LocalBackend writes under a directory and returns
// file:// locators; S3Backend uploads to a bucket and returns presigned,
// time-limited HTTPS links. Provider picks one from Config and builds it
// on first use.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alnah/go-md2docx/internal/fileutil"
)

// Backend identifies a storage implementation.
type Backend string

// Supported backends.
const (
	BackendLocal Backend = "local"
	BackendS3    Backend = "s3"
)

// ParseBackend converts a case-insensitive name to a Backend.
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case BackendLocal, BackendS3:
		return b, nil
	default:
		return "", fmt.Errorf("%w: %q (must be local or s3)", ErrUnknownBackend, name)
	}
}

// Link lifetime bounds.
const (
	MinTTL = 60 * time.Second
	MaxTTL = 3600 * time.Second
)

// ValidateTTL checks that ttl is within [MinTTL, MaxTTL].
func ValidateTTL(ttl time.Duration) error {
	if ttl < MinTTL || ttl > MaxTTL {
		return fmt.Errorf("%w: %s (must be between %s and %s)", ErrInvalidTTL, ttl, MinTTL, MaxTTL)
	}
	return nil
}

// Store uploads artifacts and removes them again.
type Store interface {
	// Put stores data under a fresh key ending in ext and returns a locator
	// valid for ttl. A zero ttl means the configured default.
	Put(ctx context.Context, data []byte, ext string, ttl time.Duration) (string, error)

	// Delete removes the artifact behind locator. It reports true when
	// nothing is left to remove.
	Delete(ctx context.Context, locator string) (bool, error)

	// Backend reports which implementation serves the store.
	Backend() Backend
}

// Config selects and configures a backend. Built once at startup.
type Config struct {
	Backend    Backend
	Bucket     string
	Region     string
	Endpoint   string // custom S3 endpoint (MinIO, localstack), empty = AWS
	AccessKey  string // static S3 credentials, empty = default chain
	SecretKey  string
	LocalDir   string
	DefaultTTL time.Duration
	Logger     *zap.Logger // nil = no logging
}

// Validate checks the settings required by the selected backend.
func (c *Config) Validate() error {
	if err := ValidateTTL(c.DefaultTTL); err != nil {
		return err
	}
	switch c.Backend {
	case BackendLocal:
		if c.LocalDir == "" {
			return fmt.Errorf("%w: local directory is required", ErrInvalidConfig)
		}
	case BackendS3:
		if c.Bucket == "" {
			return fmt.Errorf("%w: bucket is required", ErrInvalidConfig)
		}
		if c.Region == "" {
			return fmt.Errorf("%w: region is required", ErrInvalidConfig)
		}
		if (c.AccessKey == "") != (c.SecretKey == "") {
			return fmt.Errorf("%w: access key and secret key must be set together", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	return nil
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// New builds the backend selected by cfg.
func New(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendS3:
		b, err := NewS3Backend(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		b, err := NewLocalBackend(cfg)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

// Compile-time interface implementation checks.
var (
	_ Store = (*LocalBackend)(nil)
	_ Store = (*S3Backend)(nil)
	_ Store = (*Provider)(nil)
)

// Artifact is one upload: a unique key, its payload and how long the
// returned link stays valid.
type Artifact struct {
	Key         string
	Data        []byte
	ContentType string
	TTL         time.Duration
}

// newArtifact assigns a random key. Keys never collide in practice, so
// concurrent uploads need no coordination.
func newArtifact(data []byte, ext string, ttl time.Duration) (Artifact, error) {
	ext = strings.TrimPrefix(ext, ".")
	if err := fileutil.ValidateExtension(ext); err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Key:         uuid.NewString() + "." + ext,
		Data:        data,
		ContentType: ContentType(ext),
		TTL:         ttl,
	}, nil
}

var contentTypes = map[string]string{
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"html": "text/html",
	"pdf":  "application/pdf",
	"txt":  "text/plain",
}

// ContentType maps a file extension to its MIME type.
func ContentType(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(strings.TrimPrefix(ext, "."))]; ok {
		return ct
	}
	return "application/octet-stream"
}
