// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-md2docx/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForStorage returns hints for artifact upload and store setup errors.
func ForStorage(backend string) string {
	var hints []string

	switch strings.ToLower(backend) {
	case "s3":
		if os.Getenv("AWS_ACCESS_KEY_ID") == "" && os.Getenv("S3_ACCESS_KEY_ID") == "" &&
			os.Getenv("AWS_PROFILE") == "" {
			hints = append(hints, "no AWS credentials in environment; set AWS_PROFILE or S3_ACCESS_KEY_ID/S3_SECRET_ACCESS_KEY")
		}
		if os.Getenv("S3_ENDPOINT") == "" && IsInContainer() {
			hints = append(hints, "set S3_ENDPOINT when using MinIO or localstack")
		}
		hints = append(hints, "check BUCKET_NAME exists in AWS_REGION")
	case "local":
		hints = append(hints, "check LOCAL_STORAGE_DIR is writable")
	}

	return formatHints(hints)
}

// ForListen returns hints for listener errors.
func ForListen(addr string) string {
	if IsInContainer() && strings.HasPrefix(addr, "127.0.0.1") {
		return format("inside a container, listen on :PORT instead of 127.0.0.1")
	}
	return format("port may be in use; set LISTEN_ADDR or --listen")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/md2docx.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(slashed(p), "md2docx") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForTemplate returns hints for DOCX template errors.
func ForTemplate() string {
	return format("DOCX_TEMPLATE must point to a .docx file saved by a word processor")
}

// ForStyle returns hints for style override errors.
func ForStyle() string {
	return format("font size is in points (1-1638), e.g. --font-size 11 or 10.5")
}

// ForPreset returns hints for an unknown or invalid style preset.
func ForPreset(builtin []string) string {
	return formatHints([]string{
		"built-in presets: " + strings.Join(builtin, ", "),
		"custom presets live in <assets-dir>/presets/<name>.yaml",
	})
}

func slashed(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
