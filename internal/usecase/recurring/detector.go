package recurring

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// Group is the expense history of one normalized payee.
type Group struct {
	Payee        string
	Transactions []*domain.Transaction
}

// Detection is a payee group that classified as recurring.
type Detection struct {
	Payee           string
	Frequency       domain.Frequency
	TypicalAmount   decimal.Decimal
	Confidence      decimal.Decimal
	LastSeen        time.Time
	OccurrenceCount int
	CategoryID      *uuid.UUID
}

// GroupByPayee groups expenses by normalized payee in order of first
// appearance. Income and rows without a payee are ignored.
func GroupByPayee(txs []*domain.Transaction) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, tx := range txs {
		if !tx.IsExpense() || tx.Payee == nil {
			continue
		}
		payee := domain.NormalizePayee(*tx.Payee)
		if payee == "" {
			continue
		}
		i, ok := index[payee]
		if !ok {
			i = len(groups)
			index[payee] = i
			groups = append(groups, Group{Payee: payee})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}
	return groups
}

// Detect classifies each group and keeps those meeting the configured
// occurrence and confidence thresholds.
func Detect(groups []Group, cfg Config) []Detection {
	var out []Detection
	for _, g := range groups {
		if d, ok := detectGroup(g, cfg); ok {
			out = append(out, d)
		}
	}
	return out
}

func detectGroup(g Group, cfg Config) (Detection, bool) {
	if len(g.Transactions) < cfg.MinOccurrences || len(g.Transactions) < 2 {
		return Detection{}, false
	}

	txs := make([]*domain.Transaction, len(g.Transactions))
	copy(txs, g.Transactions)
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].BookingDate.Before(txs[j].BookingDate)
	})

	intervals := make([]int, 0, len(txs)-1)
	for i := 1; i < len(txs); i++ {
		intervals = append(intervals, domain.DaysBetween(txs[i-1].BookingDate, txs[i].BookingDate))
	}

	frequency, fraction, ok := Classify(intervals, cfg.Bands)
	if !ok {
		return Detection{}, false
	}

	amounts := make([]decimal.Decimal, len(txs))
	for i, tx := range txs {
		amounts[i] = tx.Amount.Abs()
	}
	median := Median(amounts)
	if median.IsZero() {
		return Detection{}, false
	}

	confidence := fraction.Add(cfg.bonus(VariationCoefficient(amounts, median)))
	if confidence.GreaterThan(cfg.MaxConfidence) {
		confidence = cfg.MaxConfidence
	}
	if confidence.LessThan(cfg.MinConfidence) {
		return Detection{}, false
	}

	return Detection{
		Payee:           g.Payee,
		Frequency:       frequency,
		TypicalAmount:   median,
		Confidence:      confidence,
		LastSeen:        txs[len(txs)-1].BookingDate,
		OccurrenceCount: len(txs),
		CategoryID:      modeCategory(txs),
	}, true
}

// Classify returns the band holding the largest fraction of intervals.
// On equal fractions the earlier band wins; bands matching nothing never win.
func Classify(intervals []int, bands []Band) (domain.Frequency, decimal.Decimal, bool) {
	if len(intervals) == 0 {
		return "", decimal.Zero, false
	}

	var (
		best     domain.Frequency
		bestHits int
	)
	for _, band := range bands {
		hits := 0
		for _, days := range intervals {
			if band.Contains(days) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = band.Frequency, hits
		}
	}
	if bestHits == 0 {
		return "", decimal.Zero, false
	}
	return best, decimal.NewFromInt(int64(bestHits)).Div(decimal.NewFromInt(int64(len(intervals)))), true
}

// Median of values; the mean of the two middle values for even counts.
func Median(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}

// VariationCoefficient is the mean absolute deviation from median divided
// by median.
func VariationCoefficient(values []decimal.Decimal, median decimal.Decimal) decimal.Decimal {
	if len(values) == 0 || median.IsZero() {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v.Sub(median).Abs())
	}
	mad := sum.Div(decimal.NewFromInt(int64(len(values))))
	return mad.Div(median)
}

func (c Config) bonus(cv decimal.Decimal) decimal.Decimal {
	for _, tier := range c.BonusTiers {
		if cv.LessThanOrEqual(tier.MaxCV) {
			return tier.Bonus
		}
	}
	return decimal.Zero
}

// modeCategory returns the most frequent category; ties go to the one seen first.
func modeCategory(txs []*domain.Transaction) *uuid.UUID {
	counts := make(map[uuid.UUID]int)
	var order []uuid.UUID
	for _, tx := range txs {
		if tx.CategoryID == nil {
			continue
		}
		if _, ok := counts[*tx.CategoryID]; !ok {
			order = append(order, *tx.CategoryID)
		}
		counts[*tx.CategoryID]++
	}

	var (
		best  *uuid.UUID
		count int
	)
	for _, id := range order {
		if counts[id] > count {
			id := id
			best, count = &id, counts[id]
		}
	}
	return best
}
