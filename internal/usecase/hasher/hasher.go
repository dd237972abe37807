package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Input holds the logical fields that identify an imported row.
type Input struct {
	AccountID    uuid.UUID
	BookingDate  time.Time
	Amount       decimal.Decimal
	Currency     string
	Payee        *string
	Purpose      *string
	ExternalID   *string
	ImportSource string
}

// ComputeImportHash returns the SHA-256 hex fingerprint of a row.
// The amount is fixed to 2 decimals and the currency upper-cased, so
// formatting differences do not change the hash; optional text is trimmed
// and absent values hash as "".
func ComputeImportHash(in Input) string {
	parts := []string{
		in.AccountID.String(),
		in.BookingDate.Format(time.DateOnly),
		in.Amount.StringFixed(2),
		strings.ToUpper(in.Currency),
		trimmed(in.Payee),
		trimmed(in.Purpose),
		trimmed(in.ExternalID),
		strings.TrimSpace(in.ImportSource),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\n")))
	return hex.EncodeToString(sum[:])
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
