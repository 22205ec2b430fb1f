package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/assets"
	"github.com/alnah/go-md2docx/internal/hints"
)

// resolveStyles layers explicit font settings over a named preset. An
// empty preset yields only the explicit settings; nil when nothing is set.
func resolveStyles(r *assets.Resolver, preset, fontSize, fontFamily string) (md2docx.StyleOverrides, error) {
	styles := md2docx.StyleOverrides{}
	if preset != "" {
		p, err := r.LoadPreset(preset)
		if err != nil {
			return nil, fmt.Errorf("%w: %w%s", ErrUsage, err, hints.ForPreset(assets.PresetNames()))
		}
		styles = p
	}

	explicit := md2docx.StyleOverrides{}
	if fontSize != "" {
		explicit[md2docx.StyleFontSize] = fontSize
	}
	if fontFamily != "" {
		explicit[md2docx.StyleFontFamily] = fontFamily
	}
	styles = assets.Merge(styles, explicit)

	if len(styles) == 0 {
		return nil, nil
	}
	return styles, nil
}

// loadTemplate reads a DOCX template given as a file path or as the name of
// a template in the assets directory.
func loadTemplate(r *assets.Resolver, ref string) ([]byte, error) {
	if isTemplatePath(ref) {
		// #nosec G304 -- path comes from the command line or config
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %w%s", ErrReadTemplate, err, hints.ForTemplate())
		}
		return data, nil
	}

	data, err := r.LoadTemplate(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w%s", ErrReadTemplate, err, hints.ForTemplate())
	}
	return data, nil
}

// isTemplatePath reports whether ref names a file rather than an asset.
func isTemplatePath(ref string) bool {
	return strings.ContainsAny(ref, `/\`) || strings.EqualFold(filepath.Ext(ref), ".docx")
}

// newResolver builds the asset resolver for dir, mapping a bad directory
// to a usage error.
func newResolver(dir string) (*assets.Resolver, error) {
	r, err := assets.NewResolver(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return r, nil
}
