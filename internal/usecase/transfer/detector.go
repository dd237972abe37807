package transfer

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// Config holds the heuristic constants of transfer detection.
type Config struct {
	WindowDays    int
	MaxConfidence decimal.Decimal
	DecayPerDay   decimal.Decimal
	MinConfidence decimal.Decimal
}

// DefaultConfig returns a 3 day window with confidence decaying by 0.1 per
// day of date difference, floored at 0.70.
func DefaultConfig() Config {
	return Config{
		WindowDays:    3,
		MaxConfidence: decimal.NewFromInt(1),
		DecayPerDay:   decimal.RequireFromString("0.1"),
		MinConfidence: decimal.RequireFromString("0.70"),
	}
}

// Confidence scores a pair whose legs are days apart.
func (c Config) Confidence(days int) decimal.Decimal {
	score := c.MaxConfidence.Sub(c.DecayPerDay.Mul(decimal.NewFromInt(int64(days))))
	return decimal.Max(score, c.MinConfidence).Round(2)
}

// Detect proposes transfer candidates among txs. A pair qualifies when the
// legs are in different accounts, the amounts cancel exactly and the dates
// are at most cfg.WindowDays apart. Pairs in existing are never proposed;
// every new pair is added to existing so that a rerun proposes nothing.
//
// Outgoing legs are visited in date order and, for each, incoming legs of
// the same magnitude in date order; the result is identical to a full
// out × in scan.
func Detect(txs []*domain.Transaction, existing map[domain.TransferPair]struct{}, cfg Config, now time.Time) []*domain.TransferCandidate {
	var outgoing []*domain.Transaction
	incoming := make(map[string][]*domain.Transaction)

	for _, tx := range txs {
		switch {
		case tx.Amount.IsNegative():
			outgoing = append(outgoing, tx)
		case tx.Amount.IsPositive():
			key := amountKey(tx.Amount)
			incoming[key] = append(incoming[key], tx)
		}
	}

	sortByDate(outgoing)
	for _, legs := range incoming {
		sortByDate(legs)
	}

	var candidates []*domain.TransferCandidate
	for _, out := range outgoing {
		for _, in := range incoming[amountKey(out.Amount)] {
			if in.AccountID == out.AccountID {
				continue
			}
			days := absInt(domain.DaysBetween(out.BookingDate, in.BookingDate))
			if days > cfg.WindowDays {
				continue
			}
			pair := domain.TransferPair{From: out.ID, To: in.ID}
			if _, seen := existing[pair]; seen {
				continue
			}
			existing[pair] = struct{}{}

			candidates = append(candidates, &domain.TransferCandidate{
				ID:                uuid.New(),
				FromTransactionID: out.ID,
				ToTransactionID:   in.ID,
				Confidence:        cfg.Confidence(days),
				Status:            domain.TransferStatusPending,
				CreatedAt:         now,
			})
		}
	}
	return candidates
}

// amountKey normalizes the magnitude so that -500 and 500.00 share a key.
func amountKey(d decimal.Decimal) string {
	return d.Abs().StringFixed(2)
}

func sortByDate(txs []*domain.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].BookingDate.Before(txs[j].BookingDate)
	})
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
