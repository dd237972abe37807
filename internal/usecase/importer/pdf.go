package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gnuhannes/my-private-finances/internal/domain"
	"github.com/gnuhannes/my-private-finances/internal/usecase/normalizer"
)

// Statement columns. HeaderAnchor must appear as a cell of the header row.
const (
	HeaderAnchor      = "Datum"
	ColumnType        = "Typ"
	ColumnDetails     = "Beschreibung"
	ColumnInflow      = "Zahlungseingang"
	ColumnOutflow     = "Zahlungsausgang"
	StatementCurrency = "EUR"
)

var errNoAmount = errors.New("row has neither inflow nor outflow")

// PDFInput describes a tabular bank statement to import.
type PDFInput struct {
	AccountID uuid.UUID
	Content   []byte
	MaxErrors int
}

// ImportPDF imports a statement whose transaction table is headed by a row
// containing HeaderAnchor. Tables before the first header are ignored and
// repeated headers on later pages are skipped.
func (s *ImportService) ImportPDF(ctx context.Context, input PDFInput) (*Result, error) {
	started := time.Now()

	b, err := s.begin(ctx, input.AccountID, domain.ImportSourcePDF, input.MaxErrors)
	if err != nil {
		return nil, err
	}

	if s.Extractor == nil {
		return nil, fmt.Errorf("%w: no table extractor configured", domain.ErrStructural)
	}
	tables, err := s.Extractor.Extract(ctx, input.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to extract tables: %v", domain.ErrStructural, err)
	}

	rows, err := statementRows(tables)
	if err != nil {
		return nil, err
	}

	b.log.WithField("rows", len(rows)).Info("pdf import started")

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		index := i + 1
		if blank(row.cells) {
			continue
		}
		b.result.TotalRows++

		rec, err := parseStatementRow(row, index)
		if err != nil {
			b.rowFailed(err, index)
			continue
		}
		s.insert(ctx, b, index, rec, nil)
	}

	return b.finish(started), nil
}

// columns maps lower-cased header names to cell indexes. Header matching is
// case-insensitive, like the extractor's anchor search.
type columns map[string]int

func (c columns) get(cells []string, name string) string {
	i, ok := c[strings.ToLower(name)]
	if !ok || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

type statementRow struct {
	cells []string
	cols  columns
}

func headerColumns(cells []string) (columns, bool) {
	cols := make(columns, len(cells))
	found := false
	for i, c := range cells {
		name := strings.TrimSpace(c)
		if name == "" {
			continue
		}
		if strings.EqualFold(name, HeaderAnchor) {
			found = true
		}
		name = strings.ToLower(name)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols, found
}

// statementRows flattens every row after the first header, across all
// tables, pairing each with the most recent header's column layout.
func statementRows(tables []Table) ([]statementRow, error) {
	var (
		cols columns
		out  []statementRow
	)
	for _, table := range tables {
		for _, cells := range table {
			if h, ok := headerColumns(cells); ok {
				cols = h
				continue
			}
			if cols == nil {
				continue
			}
			out = append(out, statementRow{cells: cells, cols: cols})
		}
	}
	if cols == nil {
		return nil, fmt.Errorf("%w: no table with a %q header column found", domain.ErrStructural, HeaderAnchor)
	}
	return out, nil
}

func parseStatementRow(row statementRow, index int) (*normalizer.Record, error) {
	dateRaw := row.cols.get(row.cells, HeaderAnchor)
	if dateRaw == "" {
		return nil, &domain.ParseError{Row: index, Field: normalizer.FieldBookingDate, Value: dateRaw}
	}
	bookingDate, err := normalizer.ParseDate(dateRaw, domain.DateFormatDMY)
	if err != nil {
		return nil, &domain.ParseError{Row: index, Field: normalizer.FieldBookingDate, Value: dateRaw, Err: err}
	}

	inflow := row.cols.get(row.cells, ColumnInflow)
	outflow := row.cols.get(row.cells, ColumnOutflow)

	rec := &normalizer.Record{
		BookingDate: bookingDate,
		Currency:    StatementCurrency,
		Payee:       nonEmpty(row.cols.get(row.cells, ColumnType)),
		Purpose:     nonEmpty(row.cols.get(row.cells, ColumnDetails)),
	}

	switch {
	case inflow != "":
		amount, err := normalizer.ParseAmount(stripCurrency(inflow), true)
		if err != nil {
			return nil, &domain.ParseError{Row: index, Field: normalizer.FieldAmount, Value: inflow, Err: err}
		}
		rec.Amount = amount.Abs()
	case outflow != "":
		amount, err := normalizer.ParseAmount(stripCurrency(outflow), true)
		if err != nil {
			return nil, &domain.ParseError{Row: index, Field: normalizer.FieldAmount, Value: outflow, Err: err}
		}
		rec.Amount = amount.Abs().Neg()
	default:
		return nil, &domain.ParseError{Row: index, Field: normalizer.FieldAmount, Err: errNoAmount}
	}

	return rec, nil
}

// stripCurrency drops a trailing euro sign as printed in statement cells.
func stripCurrency(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, "€")
	return strings.TrimSpace(v)
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
