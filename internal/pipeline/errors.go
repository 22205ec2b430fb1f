package pipeline

import "errors"

// Sentinel errors for pipeline stages.
var (
	// ErrInvalidInput is the parent of every input validation error.
	ErrInvalidInput = errors.New("invalid input")

	ErrEmptyMarkdown = errors.New("markdown content cannot be empty")
	ErrEmptyHTML     = errors.New("HTML content cannot be empty")
	ErrNotText       = errors.New("content must be UTF-8 text")

	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrFrontMatter    = errors.New("invalid front matter")
	ErrDOCXGeneration = errors.New("DOCX generation failed")
	ErrTemplate       = errors.New("invalid DOCX template")
	ErrInvalidStyle   = errors.New("invalid style override")
)

// inputError ties a specific input error to ErrInvalidInput so callers can
// match either the precise cause or the whole category.
type inputError struct {
	err error
}

func (e *inputError) Error() string { return e.err.Error() }

func (e *inputError) Is(target error) bool { return target == ErrInvalidInput }

func (e *inputError) Unwrap() error { return e.err }

func invalidInput(err error) error {
	return &inputError{err: err}
}
