package assets

import "github.com/alnah/go-md2docx/internal/pipeline"

// Loader defines the contract for loading style presets and DOCX templates.
type Loader interface {
	// LoadPreset loads a style preset by name (without .yaml extension).
	// Returns ErrPresetNotFound if the preset doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadPreset(name string) (pipeline.StyleOverrides, error)

	// LoadTemplate loads a DOCX template by name (without .docx extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) ([]byte, error)
}
