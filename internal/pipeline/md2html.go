package pipeline

import (
	"bytes"
	"context"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Feature is a set of optional Markdown syntax features.
// Fenced code blocks and ordered list numbering are CommonMark behavior
// in Goldmark and are always enabled.
type Feature uint

const (
	FeatureTables Feature = 1 << iota
	FeatureHardWraps
	FeatureStrikethrough
	FeatureAutolinks
	FeatureTaskLists
	FeatureFootnotes
	FeatureHighlighting
	FeatureHeadingIDs
)

// DefaultFeatures enables tables and newline-to-<br> conversion.
const DefaultFeatures = FeatureTables | FeatureHardWraps

// Has reports whether every feature in want is enabled.
func (f Feature) Has(want Feature) bool {
	return f&want == want
}

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown to HTML using goldmark (pure Go).
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with the given features.
func NewGoldmarkConverter(features Feature) *GoldmarkConverter {
	var extensions []goldmark.Extender
	if features.Has(FeatureTables) {
		extensions = append(extensions, extension.Table)
	}
	if features.Has(FeatureStrikethrough) {
		extensions = append(extensions, extension.Strikethrough)
	}
	if features.Has(FeatureAutolinks) {
		extensions = append(extensions, extension.Linkify)
	}
	if features.Has(FeatureTaskLists) {
		extensions = append(extensions, extension.TaskList)
	}
	if features.Has(FeatureFootnotes) {
		extensions = append(extensions, extension.Footnote)
	}
	if features.Has(FeatureHighlighting) {
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true), // CSS classes instead of inline styles
			),
		))
	}

	var parserOpts []parser.Option
	if features.Has(FeatureHeadingIDs) {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}

	// Raw HTML passes through; the DOCX builder skips script and style.
	rendererOpts := []renderer.Option{html.WithUnsafe()}
	if features.Has(FeatureHardWraps) {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}

	opts := []goldmark.Option{
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(parserOpts...),
		goldmark.WithRendererOptions(rendererOpts...),
	}

	return &GoldmarkConverter{md: goldmark.New(opts...)}
}

// ToHTML converts Markdown content to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if content == "" {
		return "", invalidInput(ErrEmptyMarkdown)
	}
	if !isText(content) {
		return "", invalidInput(ErrNotText)
	}

	// Fast path: check context before starting
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, r)}
			}
		}()
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
