package assets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/alnah/go-md2docx/internal/pipeline"
	"github.com/alnah/go-md2docx/internal/yamlutil"
)

// presetKeys lists the keys a preset may set.
var presetKeys = map[string]bool{
	pipeline.StyleFontSize:   true,
	pipeline.StyleFontFamily: true,
}

// ParsePreset decodes a YAML preset into style overrides. Scalars of any
// type are accepted and stored as text, so font_size: 11 and
// font_size: "11" are equivalent. Unknown keys are rejected.
func ParsePreset(name string, data []byte) (pipeline.StyleOverrides, error) {
	m, err := yamlutil.UnmarshalMapping(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPreset, name, err)
	}

	out := make(pipeline.StyleOverrides, len(m))
	var unknown []string
	for k, v := range m {
		if !presetKeys[k] {
			unknown = append(unknown, k)
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %s: %v", ErrInvalidPreset, name, k, err)
		}
		out[k] = s
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %q: unknown keys: %s", ErrInvalidPreset, name, strings.Join(unknown, ", "))
	}
	return out, nil
}

// Merge returns base with every key of over applied on top. Neither input
// is modified.
func Merge(base, over pipeline.StyleOverrides) pipeline.StyleOverrides {
	out := make(pipeline.StyleOverrides, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
