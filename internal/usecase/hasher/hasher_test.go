package hasher

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func baseInput() Input {
	return Input{
		AccountID:    uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		BookingDate:  time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.RequireFromString("12.3"),
		Currency:     "eur",
		Payee:        strPtr("REWE"),
		Purpose:      strPtr("Einkauf"),
		ExternalID:   strPtr("E2E-1"),
		ImportSource: "csv",
	}
}

func TestComputeImportHash_FormattingInvariant(t *testing.T) {
	a := baseInput()

	b := baseInput()
	b.Amount = decimal.RequireFromString("12.30")
	b.Currency = "EUR"
	b.Payee = strPtr("  REWE ")

	hashA := ComputeImportHash(a)
	assert.Len(t, hashA, 64)
	assert.Equal(t, hashA, ComputeImportHash(b))
}

func TestComputeImportHash_AbsentEqualsEmpty(t *testing.T) {
	a := baseInput()
	a.Purpose = nil

	b := baseInput()
	b.Purpose = strPtr("   ")

	assert.Equal(t, ComputeImportHash(a), ComputeImportHash(b))
}

func TestComputeImportHash_EachFieldMatters(t *testing.T) {
	base := ComputeImportHash(baseInput())

	tests := []struct {
		name   string
		mutate func(in *Input)
	}{
		{"account", func(in *Input) { in.AccountID = uuid.New() }},
		{"date", func(in *Input) { in.BookingDate = in.BookingDate.AddDate(0, 0, 1) }},
		{"amount", func(in *Input) { in.Amount = decimal.RequireFromString("12.31") }},
		{"sign", func(in *Input) { in.Amount = in.Amount.Neg() }},
		{"currency", func(in *Input) { in.Currency = "USD" }},
		{"payee", func(in *Input) { in.Payee = strPtr("EDEKA") }},
		{"purpose", func(in *Input) { in.Purpose = nil }},
		{"external id", func(in *Input) { in.ExternalID = strPtr("E2E-2") }},
		{"source", func(in *Input) { in.ImportSource = "pdf" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mutate(&in)
			assert.NotEqual(t, base, ComputeImportHash(in))
		})
	}
}
