package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName checks that a preset or template name is safe to use
// as a file name. Dots are rejected along with path separators, so callers
// cannot pick their own extension.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
