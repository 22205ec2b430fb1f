package main

// Notes:
// - exitCodeFor: we test the sentinel errors from the md2docx, config and
//   storage packages, plus wrapped errors to verify the errors.Is() chain.
// - Exit code constants: we verify Unix conventions (0=success, 1=general,
//   2=usage) and that custom codes stay below 126.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/config"
	"github.com/alnah/go-md2docx/internal/storage"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Storage errors (exit 4)
		{"storage", storage.ErrStorage, ExitStorage},
		{"wrapped storage", fmt.Errorf("put: %w", storage.ErrStorage), ExitStorage},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"read markdown", ErrReadMarkdown, ExitIO},
		{"read template", ErrReadTemplate, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"listen", ErrListen, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"config invalid value", config.ErrInvalidValue, ExitUsage},
		{"empty markdown", md2docx.ErrEmptyMarkdown, ExitUsage},
		{"empty html", md2docx.ErrEmptyHTML, ExitUsage},
		{"invalid style", md2docx.ErrInvalidStyle, ExitUsage},
		{"not text", md2docx.ErrNotText, ExitUsage},
		{"invalid input", md2docx.ErrInvalidInput, ExitUsage},
		{"template", md2docx.ErrTemplate, ExitUsage},
		{"invalid extension", ErrInvalidExtension, ExitUsage},
		{"unknown format", ErrUnknownFormat, ExitUsage},
		{"unknown command", ErrUnknownCommand, ExitUsage},
		{"usage", ErrUsage, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading config: %w", config.ErrConfigParse), ExitUsage},

		// Usage wins over I/O when both are in the chain
		{"template read failure", fmt.Errorf("%w: %w", md2docx.ErrTemplate, os.ErrNotExist), ExitUsage},

		// General errors (exit 1)
		{"unknown error", errors.New("something broke"), ExitGeneral},
		{"docx generation", md2docx.ErrDOCXGeneration, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix conventions
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}

	seen := map[int]string{}
	for name, code := range map[string]int{
		"ExitSuccess": ExitSuccess,
		"ExitGeneral": ExitGeneral,
		"ExitUsage":   ExitUsage,
		"ExitIO":      ExitIO,
		"ExitStorage": ExitStorage,
	} {
		if code >= 126 {
			t.Errorf("%s = %d, must be below 126", name, code)
		}
		if other, dup := seen[code]; dup {
			t.Errorf("%s and %s share code %d", name, other, code)
		}
		seen[code] = name
	}
}
