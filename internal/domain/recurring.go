package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Frequency is the recurrence band a pattern was classified into.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// RecurringPattern is a detected recurring bill for one account.
// Keyed by (AccountID, Payee, Frequency). Payee is stored normalized.
// UserConfirmed protects IsActive, never the financial fields.
type RecurringPattern struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	Payee           string
	TypicalAmount   decimal.Decimal
	Frequency       Frequency
	Confidence      decimal.Decimal
	LastSeen        time.Time
	OccurrenceCount int
	IsActive        bool
	UserConfirmed   bool
	CategoryID      *uuid.UUID
}

// Key returns the merge key of the pattern.
func (p *RecurringPattern) Key() PatternKey {
	return PatternKey{Payee: NormalizePayee(p.Payee), Frequency: p.Frequency}
}

// PatternKey identifies a pattern within one account.
type PatternKey struct {
	Payee     string
	Frequency Frequency
}

// NormalizePayee lower-cases and trims a payee for grouping.
func NormalizePayee(payee string) string {
	return strings.ToLower(strings.TrimSpace(payee))
}

// RecurringMerge is the outcome of merging one detection run into the
// stored patterns of an account. It is persisted atomically.
type RecurringMerge struct {
	AccountID   uuid.UUID
	Created     []*RecurringPattern
	Updated     []*RecurringPattern
	Deactivated []*RecurringPattern
}

// Patterns returns the created and updated patterns.
func (m *RecurringMerge) Patterns() []*RecurringPattern {
	out := make([]*RecurringPattern, 0, len(m.Created)+len(m.Updated))
	out = append(out, m.Created...)
	return append(out, m.Updated...)
}
