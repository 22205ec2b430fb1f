package pipeline

// Notes:
// - DOCX output is checked by reading word/document.xml from the zip
//   container; exact XML layout is go-docx's business, so assertions only
//   look for text and a few run properties
// - The block model is tested directly since it carries all the HTML
//   interpretation logic

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// documentXML extracts word/document.xml from DOCX bytes.
func documentXML(t *testing.T, data []byte) string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip container: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening document.xml: %v", err)
		}
		defer rc.Close()
		body, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("reading document.xml: %v", err)
		}
		return string(body)
	}
	t.Fatal("word/document.xml not found")
	return ""
}

func blocksOf(t *testing.T, content string) []block {
	t.Helper()

	root, err := parseHTML(content)
	if err != nil {
		t.Fatalf("parseHTML: %v", err)
	}
	return collectBlocks(root)
}

// runText joins the text of all runs in a block.
func runText(b block) string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// TestCollectBlocks - HTML to block model
// ---------------------------------------------------------------------------

func TestCollectBlocks(t *testing.T) {
	t.Parallel()

	t.Run("heading levels", func(t *testing.T) {
		t.Parallel()

		blocks := blocksOf(t, "<h1>One</h1>\n<h3>Three</h3>")
		if len(blocks) != 2 {
			t.Fatalf("len = %d, want 2: %+v", len(blocks), blocks)
		}
		if blocks[0].Kind != blockHeading || blocks[0].Level != 1 || runText(blocks[0]) != "One" {
			t.Errorf("blocks[0] = %+v, want heading 1 'One'", blocks[0])
		}
		if blocks[1].Level != 3 {
			t.Errorf("blocks[1].Level = %d, want 3", blocks[1].Level)
		}
	})

	t.Run("inline formatting", func(t *testing.T) {
		t.Parallel()

		blocks := blocksOf(t, `<p>a <strong>b</strong> <em>c</em> <code>d</code> <a href="https://x.test">e</a></p>`)
		if len(blocks) != 1 {
			t.Fatalf("len = %d, want 1", len(blocks))
		}
		var bold, italic, code, link bool
		for _, r := range blocks[0].Runs {
			switch r.Text {
			case "b":
				bold = r.Style.Bold
			case "c":
				italic = r.Style.Italic
			case "d":
				code = r.Style.Code
			case "e":
				link = r.Href == "https://x.test"
			}
		}
		if !bold || !italic || !code || !link {
			t.Errorf("bold=%v italic=%v code=%v link=%v, want all true: %+v",
				bold, italic, code, link, blocks[0].Runs)
		}
		if got := runText(blocks[0]); got != "a b c d e" {
			t.Errorf("text = %q, want %q", got, "a b c d e")
		}
	})

	t.Run("whitespace collapsed", func(t *testing.T) {
		t.Parallel()

		blocks := blocksOf(t, "<p>  many\n   spaces\there  </p>")
		if got := runText(blocks[0]); got != "many spaces here" {
			t.Errorf("text = %q, want %q", got, "many spaces here")
		}
	})

	t.Run("line break splits paragraph", func(t *testing.T) {
		t.Parallel()

		blocks := blocksOf(t, "<p>Line one<br>\nLine two</p>")
		if len(blocks) != 2 {
			t.Fatalf("len = %d, want 2: %+v", len(blocks), blocks)
		}
		if runText(blocks[0]) != "Line one" || runText(blocks[1]) != "Line two" {
			t.Errorf("texts = %q, %q", runText(blocks[0]), runText(blocks[1]))
		}
	})

	t.Run("ordered list markers", func(t *testing.T) {
		t.Parallel()

		blocks := blocksOf(t, `<ol start="3"><li>a</li><li>b</li></ol>`)
		if len(blocks) != 2 {
			t.Fatalf("len = %d, want 2", len(blocks))
		}
		if blocks[0].Marker != "3." || blocks[1].Marker != "4." {
			t.Errorf("markers = %q, %q, want 3. and 4.", blocks[0].Marker, blocks[1].Marker)
		}
	})

	t.Run("nested list depth", func(t *testing.T) {
		t.Parallel()

		blocks := blocksOf(t, "<ul><li>outer<ul><li>inner</li></ul></li></ul>")
		if len(blocks) != 2 {
			t.Fatalf("len = %d, want 2: %+v", len(blocks), blocks)
		}
		if blocks[0].Level != 1 || blocks[1].Level != 2 {
			t.Errorf("levels = %d, %d, want 1, 2", blocks[0].Level, blocks[1].Level)
		}
		if blocks[1].Marker != "•" {
			t.Errorf("marker = %q, want bullet", blocks[1].Marker)
		}
	})

	t.Run("code block keeps newlines", func(t *testing.T) {
		t.Parallel()

		blocks := blocksOf(t, "<pre><code>line 1\n  line 2\n</code></pre>")
		if len(blocks) != 1 || blocks[0].Kind != blockCode {
			t.Fatalf("blocks = %+v, want one code block", blocks)
		}
		if blocks[0].Code != "line 1\n  line 2" {
			t.Errorf("code = %q", blocks[0].Code)
		}
	})

	t.Run("blockquote marks blocks", func(t *testing.T) {
		t.Parallel()

		blocks := blocksOf(t, "<blockquote><p>quoted</p></blockquote><p>plain</p>")
		if len(blocks) != 2 {
			t.Fatalf("len = %d, want 2", len(blocks))
		}
		if !blocks[0].Quote || blocks[1].Quote {
			t.Errorf("quote flags = %v, %v, want true, false", blocks[0].Quote, blocks[1].Quote)
		}
	})

	t.Run("table rows", func(t *testing.T) {
		t.Parallel()

		blocks := blocksOf(t, "<table><thead><tr><th>A</th><th>B</th></tr></thead>"+
			"<tbody><tr><td>1</td><td><em>2</em></td></tr></tbody></table>")
		if len(blocks) != 1 || blocks[0].Kind != blockTable {
			t.Fatalf("blocks = %+v, want one table", blocks)
		}
		rows := blocks[0].Rows
		if len(rows) != 2 {
			t.Fatalf("rows = %d, want 2", len(rows))
		}
		if !rows[0].Header || rows[1].Header {
			t.Errorf("header flags = %v, %v, want true, false", rows[0].Header, rows[1].Header)
		}
		if len(rows[1].Cells) != 2 || rows[1].Cells[1][0].Text != "2" || !rows[1].Cells[1][0].Style.Italic {
			t.Errorf("row 2 cells = %+v", rows[1].Cells)
		}
	})

	t.Run("rule and image alt", func(t *testing.T) {
		t.Parallel()

		blocks := blocksOf(t, `<hr><p><img src="x.png" alt="logo"></p>`)
		if len(blocks) != 2 || blocks[0].Kind != blockRule {
			t.Fatalf("blocks = %+v", blocks)
		}
		if runText(blocks[1]) != "[logo]" {
			t.Errorf("text = %q, want [logo]", runText(blocks[1]))
		}
	})

	t.Run("script and style skipped", func(t *testing.T) {
		t.Parallel()

		blocks := blocksOf(t, "<style>p{}</style><script>x()</script><p>kept</p>")
		if len(blocks) != 1 || runText(blocks[0]) != "kept" {
			t.Errorf("blocks = %+v, want only 'kept'", blocks)
		}
	})

	t.Run("raw HTML from markdown", func(t *testing.T) {
		t.Parallel()

		md := "<script>alert('x')</script>\n\nsome <b>raw</b> text"
		out, err := NewGoldmarkConverter(DefaultFeatures).ToHTML(context.Background(), md)
		if err != nil {
			t.Fatalf("ToHTML: %v", err)
		}
		blocks := blocksOf(t, out)
		if len(blocks) != 1 || runText(blocks[0]) != "some raw text" {
			t.Fatalf("blocks = %+v, want only 'some raw text'", blocks)
		}
		var bold bool
		for _, r := range blocks[0].Runs {
			if r.Text == "raw" && r.Style.Bold {
				bold = true
			}
		}
		if !bold {
			t.Errorf("runs = %+v, want bold 'raw'", blocks[0].Runs)
		}
	})

	t.Run("full document", func(t *testing.T) {
		t.Parallel()

		blocks := blocksOf(t, "<!DOCTYPE html><html><head><title>T</title></head><body><p>body</p></body></html>")
		if len(blocks) != 1 || runText(blocks[0]) != "body" {
			t.Errorf("blocks = %+v, want only 'body'", blocks)
		}
	})

	t.Run("bare text becomes paragraph", func(t *testing.T) {
		t.Parallel()

		blocks := blocksOf(t, "just text")
		if len(blocks) != 1 || blocks[0].Kind != blockParagraph {
			t.Errorf("blocks = %+v, want one paragraph", blocks)
		}
	})
}

// ---------------------------------------------------------------------------
// TestGoDocxBuilder_ToDOCX - End-to-end DOCX output
// ---------------------------------------------------------------------------

func TestGoDocxBuilder_ToDOCX(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		html         string
		opts         *BuildOptions
		wantContains []string
	}{
		{
			name:         "bold paragraph",
			html:         "<p><strong>bold</strong></p>",
			wantContains: []string{"bold", "<w:b"},
		},
		{
			name:         "heading and list",
			html:         "<h1>Title</h1><ul><li>one</li><li>two</li></ul>",
			wantContains: []string{"Title", "one", "two", "•"},
		},
		{
			name:         "table",
			html:         "<table><tr><th>H</th></tr><tr><td>cell</td></tr></table>",
			wantContains: []string{"<w:tbl", "cell"},
		},
		{
			name:         "malformed markup still builds",
			html:         "<p>unclosed <strong>bold <em>both",
			wantContains: []string{"unclosed", "both"},
		},
		{
			name:         "font size override",
			html:         "<p>sized</p>",
			opts:         &BuildOptions{Styles: StyleOverrides{StyleFontSize: "11"}},
			wantContains: []string{"sized", `w:val="22"`},
		},
		{
			name:         "unknown override ignored",
			html:         "<p>kept</p>",
			opts:         &BuildOptions{Styles: StyleOverrides{"line_spacing": "2"}},
			wantContains: []string{"kept"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := NewGoDocxBuilder().ToDOCX(context.Background(), tt.html, tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(out) == 0 {
				t.Fatal("output is empty")
			}
			xml := documentXML(t, out)
			for _, want := range tt.wantContains {
				if !strings.Contains(xml, want) {
					t.Errorf("document.xml missing %q", want)
				}
			}
		})
	}
}

func TestGoDocxBuilder_ToDOCX_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		html    string
		opts    *BuildOptions
		wantErr error
	}{
		{"empty", "", nil, ErrEmptyHTML},
		{"whitespace only", "  \n\t", nil, ErrEmptyHTML},
		{"invalid UTF-8", "<p>\xff</p>", nil, ErrNotText},
		{"bad font size", "<p>x</p>", &BuildOptions{Styles: StyleOverrides{StyleFontSize: "huge"}}, ErrInvalidStyle},
		{"zero font size", "<p>x</p>", &BuildOptions{Styles: StyleOverrides{StyleFontSize: "0"}}, ErrInvalidStyle},
		{"empty font family", "<p>x</p>", &BuildOptions{Styles: StyleOverrides{StyleFontFamily: " "}}, ErrInvalidStyle},
		{"unreadable template", "<p>x</p>", &BuildOptions{Template: []byte("not a docx")}, ErrTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewGoDocxBuilder().ToDOCX(context.Background(), tt.html, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGoDocxBuilder_ToDOCX_EmptyAndWrongTypeDiffer(t *testing.T) {
	t.Parallel()

	b := NewGoDocxBuilder()
	_, emptyErr := b.ToDOCX(context.Background(), "", nil)
	_, textErr := b.ToDOCX(context.Background(), "\x00", nil)

	if !errors.Is(emptyErr, ErrInvalidInput) || !errors.Is(textErr, ErrInvalidInput) {
		t.Fatalf("errors = %v, %v, want both ErrInvalidInput", emptyErr, textErr)
	}
	if errors.Is(emptyErr, ErrNotText) || errors.Is(textErr, ErrEmptyHTML) {
		t.Errorf("errors are not distinguishable: %v, %v", emptyErr, textErr)
	}
}

func TestGoDocxBuilder_ToDOCX_Template(t *testing.T) {
	t.Parallel()

	b := NewGoDocxBuilder()
	template, err := b.ToDOCX(context.Background(), "<p>Letterhead</p>", nil)
	if err != nil {
		t.Fatalf("building template: %v", err)
	}

	out, err := b.ToDOCX(context.Background(), "<p>Body text</p>", &BuildOptions{Template: template})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	xml := documentXML(t, out)
	for _, want := range []string{"Letterhead", "Body text"} {
		if !strings.Contains(xml, want) {
			t.Errorf("document.xml missing %q", want)
		}
	}
}

func TestGoDocxBuilder_ToDOCX_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoDocxBuilder().ToDOCX(ctx, "<p>x</p>", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestStyleOverrides_resolve
// ---------------------------------------------------------------------------

func TestStyleOverrides_resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		styles  StyleOverrides
		want    resolvedStyles
		wantErr bool
	}{
		{"nil", nil, resolvedStyles{}, false},
		{"integer points", StyleOverrides{StyleFontSize: "12"}, resolvedStyles{halfPoints: "24"}, false},
		{"half points", StyleOverrides{StyleFontSize: "10.5"}, resolvedStyles{halfPoints: "21"}, false},
		{"padded", StyleOverrides{StyleFontSize: " 9 "}, resolvedStyles{halfPoints: "18"}, false},
		{"font family", StyleOverrides{StyleFontFamily: "Arial"}, resolvedStyles{font: "Arial"}, false},
		{"unknown key", StyleOverrides{"color": "red"}, resolvedStyles{}, false},
		{"negative", StyleOverrides{StyleFontSize: "-1"}, resolvedStyles{}, true},
		{"too large", StyleOverrides{StyleFontSize: "5000"}, resolvedStyles{}, true},
		{"NaN", StyleOverrides{StyleFontSize: "NaN"}, resolvedStyles{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.styles.resolve()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStyle) {
					t.Fatalf("error = %v, want ErrInvalidStyle", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
