package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DOCXBuilder abstracts HTML to DOCX conversion.
type DOCXBuilder interface {
	ToDOCX(ctx context.Context, htmlContent string, opts *BuildOptions) ([]byte, error)
}

// BuildOptions tunes a single DOCX build. A nil *BuildOptions means a blank
// document without overrides.
type BuildOptions struct {
	Styles   StyleOverrides // applied after the body is written
	Template []byte         // DOCX file seeding the document (nil = blank)
}

// GoDocxBuilder converts HTML to DOCX using go-docx (pure Go).
type GoDocxBuilder struct{}

// NewGoDocxBuilder creates a GoDocxBuilder.
func NewGoDocxBuilder() *GoDocxBuilder {
	return &GoDocxBuilder{}
}

// ToDOCX converts an HTML document or fragment to DOCX bytes.
// Malformed markup is parsed leniently, so unclosed tags still produce a
// complete document.
func (b *GoDocxBuilder) ToDOCX(ctx context.Context, htmlContent string, opts *BuildOptions) (out []byte, err error) {
	if !isText(htmlContent) {
		return nil, invalidInput(ErrNotText)
	}
	if strings.TrimSpace(htmlContent) == "" {
		return nil, invalidInput(ErrEmptyHTML)
	}
	if opts == nil {
		opts = &BuildOptions{}
	}

	// Resolve overrides first so a bad value fails before any work is done.
	styles, err := opts.Styles.resolve()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := parseHTML(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %v", ErrDOCXGeneration, err)
	}
	blocks := collectBlocks(root)

	doc, err := newDocument(opts.Template)
	if err != nil {
		return nil, err
	}

	// go-docx panics on some malformed inputs instead of returning errors.
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrDOCXGeneration, r)
		}
	}()

	writeBlocks(doc, blocks)
	styles.apply(doc)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDOCXGeneration, err)
	}
	return buf.Bytes(), nil
}

// newDocument returns a blank themed document, or one parsed from template.
func newDocument(template []byte) (*docx.Docx, error) {
	if template == nil {
		return docx.New().WithDefaultTheme(), nil
	}
	doc, err := docx.Parse(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return doc, nil
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Fragments are wrapped in a document node for uniform traversal.
func parseHTML(content string) (*html.Node, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	// Full document: starts with <!DOCTYPE or <html
	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		return html.Parse(strings.NewReader(content))
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// ---------------------------------------------------------------------------
// Block model
// ---------------------------------------------------------------------------

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading
	blockListItem
	blockCode
	blockRule
	blockTable
)

type runStyle struct {
	Bold      bool
	Italic    bool
	Underline bool
	Code      bool
}

type textRun struct {
	Text  string
	Style runStyle
	Href  string
}

type tableRow struct {
	Header bool
	Cells  [][]textRun
}

type block struct {
	Kind   blockKind
	Level  int    // heading level, or list nesting depth
	Marker string // list bullet or number, empty on continuation lines
	Quote  bool
	Runs   []textRun
	Code   string     // raw text of a code block
	Rows   []tableRow // table content
}

type listState struct {
	ordered bool
	next    int
}

// blockCollector flattens an HTML tree into a sequence of blocks.
type blockCollector struct {
	blocks []block
	cur    *block
	lists  []listState
	quote  int
}

func collectBlocks(root *html.Node) []block {
	c := &blockCollector{}
	c.walkChildren(root, runStyle{}, "")
	c.flush()
	return c.blocks
}

func (c *blockCollector) walkChildren(n *html.Node, st runStyle, href string) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child, st, href)
	}
}

func (c *blockCollector) walk(n *html.Node, st runStyle, href string) {
	switch n.Type {
	case html.TextNode:
		c.addText(n.Data, st, href)
		return
	case html.ElementNode:
	default:
		c.walkChildren(n, st, href)
		return
	}

	switch n.DataAtom {
	case atom.Head, atom.Script, atom.Style, atom.Title, atom.Template:
		return

	case atom.P, atom.Div, atom.Dd, atom.Dt:
		c.flush()
		c.walkChildren(n, st, href)
		c.flush()

	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		c.flush()
		c.open(block{Kind: blockHeading, Level: int(n.Data[1] - '0')})
		c.walkChildren(n, st, href)
		c.flush()

	case atom.Ul, atom.Ol:
		c.flush()
		state := listState{ordered: n.DataAtom == atom.Ol, next: 1}
		if start, err := strconv.Atoi(attr(n, "start")); err == nil {
			state.next = start
		}
		c.lists = append(c.lists, state)
		c.walkChildren(n, st, href)
		c.lists = c.lists[:len(c.lists)-1]
		c.flush()

	case atom.Li:
		c.flush()
		c.open(block{Kind: blockListItem, Level: max(len(c.lists), 1), Marker: c.nextMarker()})
		c.walkChildren(n, st, href)
		c.flush()

	case atom.Pre:
		c.flush()
		c.blocks = append(c.blocks, block{
			Kind:  blockCode,
			Code:  strings.TrimSuffix(textContent(n), "\n"),
			Quote: c.quote > 0,
		})

	case atom.Blockquote:
		c.flush()
		c.quote++
		c.walkChildren(n, st, href)
		c.flush()
		c.quote--

	case atom.Hr:
		c.flush()
		c.blocks = append(c.blocks, block{Kind: blockRule})

	case atom.Br:
		c.lineBreak()

	case atom.Table:
		c.flush()
		if rows := collectRows(n); len(rows) > 0 {
			c.blocks = append(c.blocks, block{Kind: blockTable, Rows: rows})
		}

	case atom.Strong, atom.B:
		st.Bold = true
		c.walkChildren(n, st, href)
	case atom.Em, atom.I:
		st.Italic = true
		c.walkChildren(n, st, href)
	case atom.U, atom.Ins:
		st.Underline = true
		c.walkChildren(n, st, href)
	case atom.Code, atom.Kbd, atom.Samp, atom.Tt:
		st.Code = true
		c.walkChildren(n, st, href)
	case atom.A:
		if h := attr(n, "href"); h != "" && !strings.HasPrefix(h, "#") {
			href = h
		}
		c.walkChildren(n, st, href)

	case atom.Img:
		if alt := attr(n, "alt"); alt != "" {
			c.addText("["+alt+"]", st, href)
		}
	case atom.Input:
		if attr(n, "type") == "checkbox" {
			mark := "☐ "
			if hasAttr(n, "checked") {
				mark = "☑ "
			}
			c.addText(mark, st, href)
		}

	default:
		c.walkChildren(n, st, href)
	}
}

func (c *blockCollector) open(b block) {
	b.Quote = c.quote > 0
	c.cur = &b
}

// flush closes the current block, dropping it when it holds no text.
func (c *blockCollector) flush() {
	if c.cur == nil {
		return
	}
	b := *c.cur
	c.cur = nil

	b.Runs = trimRuns(b.Runs)
	if len(b.Runs) == 0 && b.Kind != blockListItem {
		return
	}
	c.blocks = append(c.blocks, b)
}

// lineBreak ends the current line and continues the same block kind on a
// new paragraph, without repeating a list marker.
func (c *blockCollector) lineBreak() {
	if c.cur == nil {
		return
	}
	next := block{Kind: c.cur.Kind, Level: c.cur.Level}
	if next.Kind == blockHeading {
		next.Kind = blockParagraph
	}
	c.flush()
	c.open(next)
}

func (c *blockCollector) addText(text string, st runStyle, href string) {
	text = collapseSpace(text)
	if c.cur == nil {
		if strings.TrimSpace(text) == "" {
			return
		}
		c.open(block{Kind: blockParagraph})
	}
	if len(c.cur.Runs) == 0 {
		text = strings.TrimLeft(text, " ")
	}
	if text == "" {
		return
	}

	// Merge with the previous run when formatting is identical.
	if n := len(c.cur.Runs); n > 0 {
		last := &c.cur.Runs[n-1]
		if last.Style == st && last.Href == href {
			if strings.HasSuffix(last.Text, " ") {
				text = strings.TrimLeft(text, " ")
			}
			last.Text += text
			return
		}
	}
	c.cur.Runs = append(c.cur.Runs, textRun{Text: text, Style: st, Href: href})
}

func (c *blockCollector) nextMarker() string {
	if len(c.lists) == 0 {
		return "•"
	}
	top := &c.lists[len(c.lists)-1]
	if !top.ordered {
		return "•"
	}
	marker := strconv.Itoa(top.next) + "."
	top.next++
	return marker
}

// collectRows gathers the rows of a table, including thead/tbody/tfoot.
// Nested tables are flattened into their cell's text.
func collectRows(table *html.Node) []tableRow {
	var rows []tableRow
	var visit func(n *html.Node, header bool)
	visit = func(n *html.Node, header bool) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			switch child.DataAtom {
			case atom.Thead:
				visit(child, true)
			case atom.Tbody, atom.Tfoot:
				visit(child, header)
			case atom.Tr:
				rows = append(rows, collectRow(child, header))
			}
		}
	}
	visit(table, false)
	return rows
}

func collectRow(tr *html.Node, header bool) tableRow {
	row := tableRow{Header: header}
	for cell := tr.FirstChild; cell != nil; cell = cell.NextSibling {
		if cell.Type != html.ElementNode || (cell.DataAtom != atom.Td && cell.DataAtom != atom.Th) {
			continue
		}
		st := runStyle{Bold: cell.DataAtom == atom.Th}
		if cell.DataAtom == atom.Th {
			row.Header = true
		}

		sub := &blockCollector{}
		sub.open(block{Kind: blockParagraph})
		sub.walkChildren(cell, st, "")
		var runs []textRun
		if sub.cur != nil {
			runs = trimRuns(sub.cur.Runs)
		}
		for _, b := range sub.blocks {
			if len(runs) > 0 {
				runs = append(runs, textRun{Text: " "})
			}
			runs = append(runs, b.Runs...)
		}
		row.Cells = append(row.Cells, runs)
	}
	return row
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// textContent returns the raw text below n, keeping whitespace intact.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Br {
			sb.WriteString("\n")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

// collapseSpace folds runs of HTML whitespace into single spaces.
func collapseSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
		default:
			sb.WriteRune(r)
			space = false
		}
	}
	return sb.String()
}

// trimRuns drops trailing whitespace and empty runs.
func trimRuns(runs []textRun) []textRun {
	for len(runs) > 0 {
		last := &runs[len(runs)-1]
		last.Text = strings.TrimRight(last.Text, " ")
		if last.Text != "" {
			break
		}
		runs = runs[:len(runs)-1]
	}
	return runs
}
