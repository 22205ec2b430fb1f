package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/alnah/go-md2docx/internal/pipeline"
)

//go:embed presets/*.yaml
var presets embed.FS

// EmbeddedLoader loads presets from the embedded filesystem.
// Implements Loader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadPreset loads a built-in preset by name.
func (e *EmbeddedLoader) LoadPreset(name string) (pipeline.StyleOverrides, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	content, err := presets.ReadFile("presets/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	return ParsePreset(name, content)
}

// LoadTemplate always fails: no templates are embedded.
func (e *EmbeddedLoader) LoadTemplate(name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

// PresetNames lists the built-in presets in sorted order.
func PresetNames() []string {
	entries, err := fs.ReadDir(presets, "presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Compile-time interface check.
var _ Loader = (*EmbeddedLoader)(nil)
