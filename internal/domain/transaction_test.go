package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validTransaction() Transaction {
	return Transaction{
		ID:           uuid.New(),
		AccountID:    uuid.New(),
		BookingDate:  time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.RequireFromString("-12.34"),
		Currency:     "EUR",
		ImportSource: ImportSourceCSV,
		ImportHash:   strings.Repeat("a", 64),
	}
}

func TestTransaction_Validate(t *testing.T) {
	longPayee := strings.Repeat("p", 256)

	tests := []struct {
		name    string
		mutate  func(tx *Transaction)
		wantErr bool
		errMsg  string
	}{
		{name: "valid", mutate: func(tx *Transaction) {}},
		{name: "missing account", mutate: func(tx *Transaction) { tx.AccountID = uuid.Nil }, wantErr: true, errMsg: "must reference an account"},
		{name: "missing date", mutate: func(tx *Transaction) { tx.BookingDate = time.Time{} }, wantErr: true, errMsg: "booking date"},
		{name: "bad currency", mutate: func(tx *Transaction) { tx.Currency = "EURO" }, wantErr: true, errMsg: "3-letter"},
		{name: "bad hash", mutate: func(tx *Transaction) { tx.ImportHash = "abc" }, wantErr: true, errMsg: "sha256"},
		{name: "payee too long", mutate: func(tx *Transaction) { tx.Payee = &longPayee }, wantErr: true, errMsg: "255"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)

			err := tx.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	a := time.Date(2026, 3, 28, 23, 30, 0, 0, berlin)
	b := time.Date(2026, 4, 2, 0, 15, 0, 0, time.UTC)

	assert.Equal(t, 5, DaysBetween(a, b))
	assert.Equal(t, -5, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}
