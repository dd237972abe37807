package domain

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DateFormat selects how booking dates are parsed.
type DateFormat string

const (
	DateFormatISO DateFormat = "iso" // YYYY-MM-DD
	DateFormatDMY DateFormat = "dmy" // DD.MM.YYYY, then DD.MM.YY
)

// LocaleConfig describes how a delimited bank export is laid out.
type LocaleConfig struct {
	Delimiter    rune
	DateFormat   DateFormat
	DecimalComma bool
	// ColumnMap maps a canonical field to its ordered candidate headers.
	// Fields without an entry use the built-in aliases.
	ColumnMap map[string][]string
}

// DefaultLocale is a comma separated export with ISO dates and dot decimals.
func DefaultLocale() LocaleConfig {
	return LocaleConfig{Delimiter: ',', DateFormat: DateFormatISO}
}

// Validate ensures the locale is usable
func (l *LocaleConfig) Validate() error {
	if l.Delimiter == 0 || l.Delimiter == '\n' || l.Delimiter == '\r' || l.Delimiter == '"' || l.Delimiter == utf8.RuneError {
		return errors.New("delimiter must be a single printable character")
	}
	if l.DateFormat != DateFormatISO && l.DateFormat != DateFormatDMY {
		return errors.New("date format must be iso or dmy")
	}
	return nil
}

// LocaleOverride replaces individual fields of a base locale. Nil fields keep
// the base value.
type LocaleOverride struct {
	Delimiter    *rune
	DateFormat   *DateFormat
	DecimalComma *bool
}

// IsZero reports whether no field is overridden.
func (o LocaleOverride) IsZero() bool {
	return o.Delimiter == nil && o.DateFormat == nil && o.DecimalComma == nil
}

// Apply returns base with the overridden fields replaced.
func (o LocaleOverride) Apply(base LocaleConfig) LocaleConfig {
	if o.Delimiter != nil {
		base.Delimiter = *o.Delimiter
	}
	if o.DateFormat != nil {
		base.DateFormat = *o.DateFormat
	}
	if o.DecimalComma != nil {
		base.DecimalComma = *o.DecimalComma
	}
	return base
}

// CsvProfile is a named, persisted LocaleConfig.
type CsvProfile struct {
	ID     uuid.UUID
	Name   string
	Locale LocaleConfig
}

// Validate ensures the profile adheres to domain rules
func (p *CsvProfile) Validate() error {
	if p.Name == "" {
		return errors.New("csv profile name cannot be empty")
	}
	if utf8.RuneCountInString(p.Name) > 100 {
		return errors.New("csv profile name must be at most 100 characters")
	}
	return p.Locale.Validate()
}
