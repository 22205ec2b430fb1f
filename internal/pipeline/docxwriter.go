package pipeline

import (
	"strings"

	"github.com/fumiama/go-docx"
)

const (
	monoFont       = "Consolas"
	codeHalfPoints = "20"
	quotePrefix    = "    "
	listIndent     = "    "
)

// headingHalfPoints maps heading levels 1-6 to run sizes in half-points.
var headingHalfPoints = [...]string{"", "32", "28", "26", "24", "22", "22"}

// writeBlocks appends every block to the document body in order.
func writeBlocks(doc *docx.Docx, blocks []block) {
	for _, b := range blocks {
		switch b.Kind {
		case blockHeading:
			p := doc.AddParagraph()
			for _, r := range b.Runs {
				run := addRun(p, r, b.Quote)
				if run != nil {
					run.Bold().Size(headingHalfPoints[clampLevel(b.Level)])
				}
			}

		case blockListItem:
			p := doc.AddParagraph()
			prefix := strings.Repeat(listIndent, max(b.Level-1, 0))
			if b.Marker != "" {
				prefix += b.Marker + " "
			} else {
				prefix += "  "
			}
			p.AddText(prefix)
			writeRuns(p, b.Runs, b.Quote)

		case blockCode:
			for _, line := range strings.Split(b.Code, "\n") {
				p := doc.AddParagraph()
				if b.Quote {
					p.AddText(quotePrefix)
				}
				p.AddText(line).Font(monoFont, monoFont, monoFont, "default").Size(codeHalfPoints)
			}

		case blockRule:
			doc.AddParagraph().Justification("center").AddText(strings.Repeat("─", 24))

		case blockTable:
			writeTable(doc, b.Rows)

		default:
			p := doc.AddParagraph()
			if b.Quote {
				p.AddText(quotePrefix)
			}
			writeRuns(p, b.Runs, b.Quote)
		}
	}
}

func writeRuns(p *docx.Paragraph, runs []textRun, quote bool) {
	for _, r := range runs {
		addRun(p, r, quote)
	}
}

// addRun writes one formatted run. Hyperlinks carry their own styling in
// go-docx, so nil is returned for them.
func addRun(p *docx.Paragraph, r textRun, quote bool) *docx.Run {
	if r.Href != "" {
		p.AddLink(r.Text, r.Href)
		return nil
	}
	run := p.AddText(r.Text)
	if r.Style.Bold {
		run.Bold()
	}
	if r.Style.Italic || quote {
		run.Italic()
	}
	if r.Style.Underline {
		run.Underline("single")
	}
	if r.Style.Code {
		run.Font(monoFont, monoFont, monoFont, "default")
	}
	return run
}

// writeTable renders rows as a grid sized to the widest row.
func writeTable(doc *docx.Docx, rows []tableRow) {
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row.Cells))
	}
	if cols == 0 {
		return
	}

	tbl := doc.AddTable(len(rows), cols, 0, nil)
	for i, row := range rows {
		for j, cell := range row.Cells {
			p := tbl.TableRows[i].TableCells[j].AddParagraph()
			for _, r := range cell {
				if row.Header {
					r.Style.Bold = true
				}
				addRun(p, r, false)
			}
		}
	}
}

func clampLevel(level int) int {
	return min(max(level, 1), len(headingHalfPoints)-1)
}
