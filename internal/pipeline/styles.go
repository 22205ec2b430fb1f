package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
)

// Recognized style override keys. Unknown keys are ignored.
const (
	StyleFontSize   = "font_size"
	StyleFontFamily = "font_family"
)

// Font size bounds in points, matching what Word accepts.
const (
	minFontSize = 1.0
	maxFontSize = 1638.0
)

// StyleOverrides holds optional document-wide formatting, keyed by the
// Style* constants. Values are textual; font_size is in points.
type StyleOverrides map[string]string

// resolvedStyles is the validated form of StyleOverrides.
type resolvedStyles struct {
	halfPoints string // run size, empty = unchanged
	font       string // run font, empty = unchanged
}

// resolve validates overrides and converts them to run properties.
func (s StyleOverrides) resolve() (resolvedStyles, error) {
	var rs resolvedStyles

	if raw, ok := s[StyleFontSize]; ok {
		size, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(size) || size < minFontSize || size > maxFontSize {
			return rs, invalidInput(fmt.Errorf("%w: font_size %q must be a number between %g and %g",
				ErrInvalidStyle, raw, minFontSize, maxFontSize))
		}
		rs.halfPoints = strconv.Itoa(int(math.Round(size * 2)))
	}

	if raw, ok := s[StyleFontFamily]; ok {
		name := strings.TrimSpace(raw)
		if name == "" {
			return rs, invalidInput(fmt.Errorf("%w: font_family is empty", ErrInvalidStyle))
		}
		rs.font = name
	}

	return rs, nil
}

func (rs resolvedStyles) empty() bool {
	return rs.halfPoints == "" && rs.font == ""
}

// apply sets the resolved properties on every run of every top-level
// paragraph. Runs inside tables keep their own formatting.
func (rs resolvedStyles) apply(doc *docx.Docx) {
	if rs.empty() {
		return
	}
	for _, item := range doc.Document.Body.Items {
		p, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		for _, child := range p.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			if rs.halfPoints != "" {
				run.Size(rs.halfPoints)
			}
			if rs.font != "" {
				run.Font(rs.font, rs.font, rs.font, "default")
			}
		}
	}
}
