package assets

import (
	"errors"

	"github.com/alnah/go-md2docx/internal/pipeline"
)

// Resolver combines custom and embedded loaders with fallback logic.
// When a custom loader is configured, it tries custom first, then falls back
// to embedded if the asset is not found in the custom location.
type Resolver struct {
	custom   Loader // nil if no custom path configured
	embedded Loader
}

// NewResolver creates a Resolver.
// If customBasePath is empty, only embedded assets are used.
// Returns error if customBasePath is set but invalid.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}
	return r, nil
}

// LoadPreset loads a preset, trying the custom loader first if available.
func (r *Resolver) LoadPreset(name string) (pipeline.StyleOverrides, error) {
	return withFallback(r, func(l Loader) (pipeline.StyleOverrides, error) {
		return l.LoadPreset(name)
	})
}

// LoadTemplate loads a template, trying the custom loader first if available.
func (r *Resolver) LoadTemplate(name string) ([]byte, error) {
	return withFallback(r, func(l Loader) ([]byte, error) {
		return l.LoadTemplate(name)
	})
}

// HasCustomLoader returns true if a custom asset loader is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

func withFallback[T any](r *Resolver, load func(Loader) (T, error)) (T, error) {
	if r.custom == nil {
		return load(r.embedded)
	}

	v, err := load(r.custom)
	if err == nil {
		return v, nil
	}

	// Only "not found" falls back; parse and I/O errors surface as-is.
	if !isNotFoundError(err) {
		return v, err
	}
	return load(r.embedded)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrPresetNotFound) || errors.Is(err, ErrTemplateNotFound)
}

// Compile-time interface check.
var _ Loader = (*Resolver)(nil)
