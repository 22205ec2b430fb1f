package pipeline

import (
	"fmt"
	"strings"

	"github.com/alnah/go-md2docx/internal/yamlutil"
)

const frontMatterDelimiter = "---"

// SplitFrontMatter separates a leading YAML front matter block from the body.
// The block must start on the first line with "---" and end with a line
// containing only "---" or "...". Without a block, the metadata is an empty
// map and the body is the unchanged content.
func SplitFrontMatter(content string) (map[string]any, string, error) {
	block, body, found := cutFrontMatter(content)
	if !found {
		return map[string]any{}, content, nil
	}

	meta, err := yamlutil.UnmarshalMapping([]byte(block))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFrontMatter, err)
	}
	return meta, body, nil
}

// cutFrontMatter expects normalized (\n) line endings.
func cutFrontMatter(content string) (block, body string, found bool) {
	first, rest, ok := strings.Cut(content, "\n")
	if !ok || strings.TrimRight(first, " \t") != frontMatterDelimiter {
		return "", content, false
	}

	var lines []string
	for {
		line, tail, more := strings.Cut(rest, "\n")
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == frontMatterDelimiter || trimmed == "..." {
			return strings.Join(lines, "\n"), tail, true
		}
		if !more {
			// Unterminated block: treat as ordinary Markdown.
			return "", content, false
		}
		lines = append(lines, line)
		rest = tail
	}
}
