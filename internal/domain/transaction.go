package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Import sources written to Transaction.ImportSource.
const (
	ImportSourceCSV = "csv"
	ImportSourcePDF = "pdf"
)

// Transaction represents a single booked ledger row.
// (AccountID, ImportHash) is unique; it is the only idempotency guarantee.
type Transaction struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	BookingDate  time.Time
	Amount       decimal.Decimal // signed, 2dp: negative = expense/outgoing
	Currency     string
	Payee        *string
	Purpose      *string
	CategoryID   *uuid.UUID
	ExternalID   *string
	ImportSource string
	ImportHash   string
	IsTransfer   bool
}

// Validate ensures the transaction adheres to domain rules
func (t *Transaction) Validate() error {
	if t.AccountID == uuid.Nil {
		return errors.New("transaction must reference an account")
	}
	if t.BookingDate.IsZero() {
		return errors.New("transaction must have a booking date")
	}
	if len(t.Currency) != 3 {
		return errors.New("transaction currency must be a 3-letter code")
	}
	if len(t.ImportHash) != 64 {
		return errors.New("transaction import hash must be a sha256 hex digest")
	}
	if t.Payee != nil && len(*t.Payee) > 255 {
		return errors.New("transaction payee must be at most 255 characters")
	}
	return nil
}

// IsExpense reports whether the transaction moves money out of the account.
func (t *Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// Sign selects transactions by the sign of their amount.
type Sign int

const (
	SignAny Sign = iota
	SignNegative
	SignPositive
)

// TransactionFilter narrows bulk transaction reads.
// The zero value selects every transaction.
type TransactionFilter struct {
	AccountID     *uuid.UUID
	Sign          Sign
	RequirePayee  bool
	Uncategorized bool
}

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}
