package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/gnuhannes/my-private-finances/internal/domain"
	"github.com/gnuhannes/my-private-finances/internal/usecase/normalizer"
)

// CSVInput describes a delimited export to import.
// The locale is the named Profile, or the default when none is given, with
// Overrides applied field by field.
type CSVInput struct {
	AccountID uuid.UUID
	Content   io.Reader
	Profile   string
	Overrides domain.LocaleOverride
	MaxErrors int
}

// ImportCSV imports a header-driven delimited export. The content may be
// prefixed with a UTF-8 byte order mark.
func (s *ImportService) ImportCSV(ctx context.Context, input CSVInput) (*Result, error) {
	started := time.Now()

	b, err := s.begin(ctx, input.AccountID, domain.ImportSourceCSV, input.MaxErrors)
	if err != nil {
		return nil, err
	}

	locale, err := s.resolveLocale(ctx, input)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(transform.NewReader(input.Content, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.Comma = locale.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: file has no header row", domain.ErrStructural)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", domain.ErrStructural, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if blank(header) {
		return nil, fmt.Errorf("%w: header row is empty", domain.ErrStructural)
	}

	b.log.WithField("columns", len(header)).Info("csv import started")

	index := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		index++
		if err != nil {
			b.result.TotalRows++
			b.rowFailed(fmt.Errorf("row %d: %w: %v", index, domain.ErrValidation, err), index)
			continue
		}
		if blank(record) {
			continue
		}
		b.result.TotalRows++

		rec, err := normalizer.Normalize(rowFromRecord(header, record), index, locale)
		if err != nil {
			b.rowFailed(err, index)
			continue
		}

		externalID := rec.ExternalID
		s.insert(ctx, b, index, rec, &externalID)
	}

	return b.finish(started), nil
}

func (s *ImportService) resolveLocale(ctx context.Context, input CSVInput) (domain.LocaleConfig, error) {
	base := domain.DefaultLocale()
	if input.Profile != "" {
		profile, err := s.ProfileRepo.GetByName(ctx, input.Profile)
		if err != nil {
			return domain.LocaleConfig{}, err
		}
		base = profile.Locale
	}

	locale := input.Overrides.Apply(base)
	if err := locale.Validate(); err != nil {
		return domain.LocaleConfig{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return locale, nil
}

// rowFromRecord keys a record by header. Short records yield "" for the
// missing trailing columns so that header presence alone decides aliases.
func rowFromRecord(header, record []string) normalizer.Row {
	row := make(normalizer.Row, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		if _, seen := row[name]; seen {
			continue
		}
		if i < len(record) {
			row[name] = record[i]
		} else {
			row[name] = ""
		}
	}
	return row
}

func trimSpace(s string) string {
	return strings.TrimSpace(s)
}
