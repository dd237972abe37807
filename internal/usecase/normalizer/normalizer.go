// Package normalizer turns raw bank export rows into canonical transaction fields.
package normalizer

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// Canonical field names used as ColumnMap keys.
const (
	FieldBookingDate = "booking_date"
	FieldAmount      = "amount"
	FieldCurrency    = "currency"
	FieldPayee       = "payee"
	FieldPurpose     = "purpose"
	FieldExternalID  = "external_id"
)

// DefaultColumnMap lists the built-in header aliases per canonical field,
// covering the plain English export and common German bank exports.
var DefaultColumnMap = map[string][]string{
	FieldBookingDate: {"booking_date", "Buchungstag", "Valutadatum"},
	FieldAmount:      {"amount", "Betrag"},
	FieldCurrency:    {"currency", "Waehrung", "Währung"},
	FieldPayee:       {"payee", "Beguenstigter/Zahlungspflichtiger"},
	FieldPurpose:     {"purpose", "Verwendungszweck"},
	FieldExternalID:  {"external_id", "Kundenreferenz (End-to-End)"},
}

var errEmpty = errors.New("value is empty")

// Row is a header-keyed record. A key being present matters even when its
// value is empty.
type Row map[string]string

// Record holds the canonical fields of one normalized row.
type Record struct {
	BookingDate time.Time
	Amount      decimal.Decimal
	Currency    string
	Payee       *string
	Purpose     *string
	ExternalID  string // source id, or a stable fallback fingerprint
}

// Normalize resolves aliases and parses one row. index is the 1-based row
// number after the header and is carried into every returned error.
func Normalize(row Row, index int, cfg domain.LocaleConfig) (*Record, error) {
	dateRaw, err := requireField(row, index, FieldBookingDate, cfg)
	if err != nil {
		return nil, err
	}
	amountRaw, err := requireField(row, index, FieldAmount, cfg)
	if err != nil {
		return nil, err
	}
	currencyRaw, err := requireField(row, index, FieldCurrency, cfg)
	if err != nil {
		return nil, err
	}

	bookingDate, err := ParseDate(dateRaw, cfg.DateFormat)
	if err != nil {
		return nil, &domain.ParseError{Row: index, Field: FieldBookingDate, Value: dateRaw, Err: err}
	}

	amount, err := ParseAmount(amountRaw, cfg.DecimalComma)
	if err != nil {
		return nil, &domain.ParseError{Row: index, Field: FieldAmount, Value: amountRaw, Err: err}
	}

	currency := NormalizeCurrency(currencyRaw)
	if currency == "" {
		return nil, &domain.ParseError{Row: index, Field: FieldCurrency, Value: currencyRaw, Err: errEmpty}
	}

	rec := &Record{
		BookingDate: bookingDate,
		Amount:      amount,
		Currency:    currency,
		Payee:       optional(row, FieldPayee, cfg),
		Purpose:     optional(row, FieldPurpose, cfg),
	}

	if ext := optional(row, FieldExternalID, cfg); ext != nil {
		rec.ExternalID = *ext
	} else {
		rec.ExternalID = FallbackExternalID(rec)
	}

	return rec, nil
}

// Aliases returns the candidate headers for field: the configured list if
// present, else the built-in defaults.
func Aliases(field string, cfg domain.LocaleConfig) []string {
	if aliases, ok := cfg.ColumnMap[field]; ok && len(aliases) > 0 {
		return aliases
	}
	return DefaultColumnMap[field]
}

// Resolve returns the value under the first alias present in row.
func Resolve(row Row, field string, cfg domain.LocaleConfig) (string, bool) {
	for _, alias := range Aliases(field, cfg) {
		if v, ok := row[alias]; ok {
			return v, true
		}
	}
	return "", false
}

func requireField(row Row, index int, field string, cfg domain.LocaleConfig) (string, error) {
	v, ok := Resolve(row, field, cfg)
	if !ok {
		return "", &domain.MissingColumnError{Row: index, Field: field, Aliases: Aliases(field, cfg)}
	}
	return v, nil
}

func optional(row Row, field string, cfg domain.LocaleConfig) *string {
	v, ok := Resolve(row, field, cfg)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// ParseDate parses a booking date. iso is strict YYYY-MM-DD; dmy accepts
// DD.MM.YYYY and falls back to DD.MM.YY.
func ParseDate(value string, format domain.DateFormat) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errEmpty
	}

	switch format {
	case domain.DateFormatDMY:
		if t, err := time.Parse("02.01.2006", value); err == nil {
			return t, nil
		}
		return time.Parse("02.01.06", value)
	default:
		return time.Parse(time.DateOnly, value)
	}
}

// ParseAmount parses a signed decimal. With decimalComma, "." is treated as
// a thousands separator and "," as the decimal point.
func ParseAmount(value string, decimalComma bool) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, errEmpty
	}
	if decimalComma {
		value = strings.ReplaceAll(value, ".", "")
		value = strings.ReplaceAll(value, ",", ".")
	}
	return decimal.NewFromString(value)
}

// NormalizeCurrency trims and upper-cases a currency code.
func NormalizeCurrency(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// FallbackExternalID is a stable SHA-1 over the pipe-joined canonical
// fields. It only gives rows without a bank reference some identity; it is
// independent of the import hash.
func FallbackExternalID(rec *Record) string {
	parts := []string{
		rec.BookingDate.Format(time.DateOnly),
		rec.Amount.StringFixed(2),
		rec.Currency,
		deref(rec.Payee),
		deref(rec.Purpose),
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
