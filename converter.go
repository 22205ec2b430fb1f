package md2docx

import (
	"context"
	"fmt"

	"github.com/alnah/go-md2docx/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.DOCXBuilder          = (*pipeline.GoDocxBuilder)(nil)
)

// Converter renders Markdown to HTML and builds DOCX documents from HTML.
// A Converter holds no per-call state and is safe for concurrent use.
type Converter struct {
	cfg           converterConfig
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	docxBuilder   pipeline.DOCXBuilder
}

// NewConverter creates a Converter. Without options it renders with
// DefaultFeatures and bounds each call by a 30 second timeout.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		cfg: converterConfig{
			features: DefaultFeatures,
			timeout:  defaultTimeout,
		},
		preprocessor: &pipeline.CommonMarkPreprocessor{},
		docxBuilder:  pipeline.NewGoDocxBuilder(),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Created after options so WithFeatures takes effect
	if c.htmlConverter == nil {
		c.htmlConverter = pipeline.NewGoldmarkConverter(c.cfg.features)
	}

	return c
}

// ToHTML renders Markdown to an HTML fragment.
// Fails with ErrEmptyMarkdown or ErrNotText (both ErrInvalidInput) on bad input.
func (c *Converter) ToHTML(ctx context.Context, markdown string) (html string, err error) {
	defer recoverInternal(&err)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	return c.render(ctx, c.preprocessor.PreprocessMarkdown(ctx, markdown))
}

// ToHTMLWithMetadata renders Markdown after removing a leading YAML front
// matter block, which is returned as Metadata. Without a block, Metadata is
// an empty map. A document holding only front matter renders to "".
func (c *Converter) ToHTMLWithMetadata(ctx context.Context, markdown string) (result *Rendered, err error) {
	defer recoverInternal(&err)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	content := c.preprocessor.PreprocessMarkdown(ctx, markdown)
	if content == "" {
		// Same validation as ToHTML
		_, err := c.render(ctx, content)
		return nil, err
	}

	meta, body, err := pipeline.SplitFrontMatter(content)
	if err != nil {
		return nil, err
	}

	res := &Rendered{Metadata: meta}
	if body == "" {
		return res, nil
	}

	res.HTML, err = c.render(ctx, body)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ToDOCX builds a DOCX document from HTML, applying styles after the body
// is written. A nil styles map leaves the default formatting.
func (c *Converter) ToDOCX(ctx context.Context, html string, styles StyleOverrides) ([]byte, error) {
	return c.Build(ctx, html, BuildOptions{Styles: styles})
}

// ToDOCXWithTemplate builds a DOCX document whose page setup, styles and
// leading content come from template. A nil template means a blank document.
func (c *Converter) ToDOCXWithTemplate(ctx context.Context, html string, template []byte) ([]byte, error) {
	return c.Build(ctx, html, BuildOptions{Template: template})
}

// Build is the general form of ToDOCX and ToDOCXWithTemplate.
func (c *Converter) Build(ctx context.Context, html string, opts BuildOptions) (out []byte, err error) {
	defer recoverInternal(&err)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	return c.docxBuilder.ToDOCX(ctx, html, &opts)
}

func (c *Converter) render(ctx context.Context, markdown string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return c.htmlConverter.ToHTML(ctx, markdown)
}

// recoverInternal turns a panic into an error so it never reaches callers.
func recoverInternal(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("internal error: %v", r)
	}
}
