// Package md2docx converts Markdown documents to HTML and DOCX in pure Go.
//
// # Quick Start
//
//	conv := md2docx.NewConverter()
//
//	html, err := conv.ToHTML(ctx, "# Hello\n\nWorld")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	doc, err := conv.ToDOCX(ctx, html, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.docx", doc, 0o644)
//
// # Conversion Pipeline
//
//  1. Markdown preprocessing (BOM removal, line ending normalization)
//  2. Optional YAML front matter extraction (ToHTMLWithMetadata)
//  3. Markdown to HTML via Goldmark
//  4. HTML to DOCX via go-docx, with optional template and style overrides
//
// # Configuration
//
//	conv := md2docx.NewConverter(
//	    md2docx.WithFeatures(md2docx.DefaultFeatures|md2docx.FeatureStrikethrough),
//	    md2docx.WithTimeout(10*time.Second),
//	)
//
//	doc, err := conv.ToDOCX(ctx, html, md2docx.StyleOverrides{
//	    md2docx.StyleFontSize: "11",
//	})
//
// # Errors
//
// Input problems match ErrInvalidInput with errors.Is; the specific cause
// (ErrEmptyMarkdown, ErrEmptyHTML, ErrNotText, ErrInvalidStyle) matches too.
// Conversion failures match ErrHTMLConversion, ErrFrontMatter,
// ErrTemplate or ErrDOCXGeneration.
//
// # Service
//
// The cmd/md2docx binary wraps the converter in an HTTP service that
// uploads DOCX results to an artifact store (local directory or S3) and
// answers with a time-limited download link.
package md2docx
