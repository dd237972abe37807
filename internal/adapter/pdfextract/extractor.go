// Package pdfextract turns text-based bank statement PDFs into row tables.
//
// Statements are laid out as a single table per page. The header row is
// found by an anchor column name; its cells fix the column positions, and
// every later text line is split into cells by horizontal position. Pages
// without a header reuse the layout of the previous page.
package pdfextract

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"github.com/gnuhannes/my-private-finances/internal/usecase/importer"
)

// Extractor implements importer.TableExtractor for text-based PDFs.
type Extractor struct {
	Anchor string
	Logger logrus.FieldLogger
}

var _ importer.TableExtractor = (*Extractor)(nil)

// NewExtractor creates an Extractor locating headers by anchor.
func NewExtractor(anchor string, logger logrus.FieldLogger) *Extractor {
	return &Extractor{Anchor: anchor, Logger: logger}
}

// Extract returns one table per page that carries tabular rows. Header rows
// are kept in the tables so callers can map columns by name. Pages before
// the first header yield nothing.
func (e *Extractor) Extract(ctx context.Context, content []byte) ([]importer.Table, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var (
		tables []importer.Table
		lay    *layout
	)
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("failed to read text of page %d: %w", i, err)
		}

		var table importer.Table
		table, lay = e.pageTable(pageLines(rows), lay)
		e.Logger.WithFields(logrus.Fields{
			"page": i,
			"rows": len(table),
		}).Debug("pdf page extracted")
		if len(table) > 0 {
			tables = append(tables, table)
		}
	}
	return tables, nil
}

// word is a run of text with its horizontal extent.
type word struct {
	X0, X1 float64
	S      string
}

func (w word) center() float64 { return (w.X0 + w.X1) / 2 }

// pageLines orders rows top to bottom and merges each row's fragments into words.
func pageLines(rows pdf.Rows) [][]word {
	sorted := make(pdf.Rows, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position > sorted[j].Position })

	lines := make([][]word, 0, len(sorted))
	for _, row := range sorted {
		if ws := mergeWords(row.Content); len(ws) > 0 {
			lines = append(lines, ws)
		}
	}
	return lines
}

// mergeWords joins fragments whose gap is below half an em into one word.
// Fragments without a width are estimated at half an em per rune.
func mergeWords(texts []pdf.Text) []word {
	frags := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t.S) != "" {
			frags = append(frags, t)
		}
	}
	sort.SliceStable(frags, func(i, j int) bool { return frags[i].X < frags[j].X })

	var out []word
	for _, t := range frags {
		em := t.FontSize
		if em <= 0 {
			em = 10
		}
		width := t.W
		if width <= 0 {
			width = float64(len([]rune(t.S))) * em / 2
		}
		if n := len(out); n > 0 && t.X-out[n-1].X1 < em/2 {
			out[n-1].S += t.S
			out[n-1].X1 = math.Max(out[n-1].X1, t.X+width)
			continue
		}
		out = append(out, word{X0: t.X, X1: t.X + width, S: t.S})
	}
	for i := range out {
		out[i].S = strings.TrimSpace(out[i].S)
	}
	return out
}

// layout holds the header cells of a table.
type layout struct {
	header []word
}

// cells assigns each word to the header column with the nearest center.
// Several words in one column are joined by a space.
func (l *layout) cells(line []word) []string {
	out := make([]string, len(l.header))
	for _, w := range line {
		best, dist := 0, math.Inf(1)
		for i, h := range l.header {
			if d := math.Abs(h.center() - w.center()); d < dist {
				best, dist = i, d
			}
		}
		if out[best] == "" {
			out[best] = w.S
		} else {
			out[best] += " " + w.S
		}
	}
	return out
}

func (e *Extractor) isHeader(line []word) bool {
	for _, w := range line {
		if strings.EqualFold(w.S, e.Anchor) {
			return true
		}
	}
	return false
}

// pageTable builds the table of one page. Lines without an anchor cell
// continue the row above them; lines before any header are dropped.
func (e *Extractor) pageTable(lines [][]word, lay *layout) (importer.Table, *layout) {
	var table importer.Table
	anchorCol := -1
	if lay != nil {
		anchorCol = lay.anchorColumn(e.Anchor)
	}

	for _, line := range lines {
		if e.isHeader(line) {
			lay = &layout{header: line}
			anchorCol = lay.anchorColumn(e.Anchor)
			table = append(table, lay.cells(line))
			continue
		}
		if lay == nil {
			continue
		}

		cells := lay.cells(line)
		if cells[anchorCol] == "" {
			if n := len(table); n > 0 && !isHeaderRow(table[n-1], lay) {
				appendCells(table[n-1], cells)
			}
			continue
		}
		table = append(table, cells)
	}
	return table, lay
}

func (l *layout) anchorColumn(anchor string) int {
	for i, h := range l.header {
		if strings.EqualFold(h.S, anchor) {
			return i
		}
	}
	return 0
}

func isHeaderRow(row []string, l *layout) bool {
	for i, h := range l.header {
		if i >= len(row) || row[i] != h.S {
			return false
		}
	}
	return true
}

func appendCells(dst, src []string) {
	for i, s := range src {
		switch {
		case s == "":
		case dst[i] == "":
			dst[i] = s
		default:
			dst[i] += " " + s
		}
	}
}
