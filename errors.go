package md2docx

import "github.com/alnah/go-md2docx/internal/pipeline"

// Sentinel errors for library operations.
var (
	// ErrInvalidInput matches every input validation error below.
	ErrInvalidInput = pipeline.ErrInvalidInput

	// Input validation errors.
	ErrEmptyMarkdown = pipeline.ErrEmptyMarkdown
	ErrEmptyHTML     = pipeline.ErrEmptyHTML
	ErrNotText       = pipeline.ErrNotText
	ErrInvalidStyle  = pipeline.ErrInvalidStyle

	// Conversion errors.
	ErrHTMLConversion = pipeline.ErrHTMLConversion
	ErrFrontMatter    = pipeline.ErrFrontMatter
	ErrDOCXGeneration = pipeline.ErrDOCXGeneration
	ErrTemplate       = pipeline.ErrTemplate
)
