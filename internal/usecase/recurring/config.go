package recurring

import (
	"github.com/shopspring/decimal"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// Band is an inclusive range of days between successive occurrences.
type Band struct {
	Frequency domain.Frequency
	MinDays   int
	MaxDays   int
}

// Contains reports whether days falls inside the band.
func (b Band) Contains(days int) bool {
	return days >= b.MinDays && days <= b.MaxDays
}

// BonusTier adds Bonus to the confidence when the amount variation is at
// most MaxCV.
type BonusTier struct {
	MaxCV decimal.Decimal
	Bonus decimal.Decimal
}

// Config holds the heuristic constants of recurring detection.
// Bands are listed in tie-break priority order; BonusTiers from tightest to loosest.
type Config struct {
	Bands          []Band
	BonusTiers     []BonusTier
	MinOccurrences int
	MinConfidence  decimal.Decimal
	MaxConfidence  decimal.Decimal
}

// DefaultConfig returns the standard weekly/monthly/quarterly/yearly bands.
func DefaultConfig() Config {
	return Config{
		Bands: []Band{
			{Frequency: domain.FrequencyWeekly, MinDays: 4, MaxDays: 10},
			{Frequency: domain.FrequencyMonthly, MinDays: 25, MaxDays: 38},
			{Frequency: domain.FrequencyQuarterly, MinDays: 75, MaxDays: 110},
			{Frequency: domain.FrequencyYearly, MinDays: 340, MaxDays: 395},
		},
		BonusTiers: []BonusTier{
			{MaxCV: decimal.RequireFromString("0.05"), Bonus: decimal.RequireFromString("0.15")},
			{MaxCV: decimal.RequireFromString("0.10"), Bonus: decimal.RequireFromString("0.10")},
			{MaxCV: decimal.RequireFromString("0.20"), Bonus: decimal.RequireFromString("0.05")},
		},
		MinOccurrences: 3,
		MinConfidence:  decimal.RequireFromString("0.6"),
		MaxConfidence:  decimal.NewFromInt(1),
	}
}

// Monthly normalisation factors used by the summary.
var monthlyFactor = map[domain.Frequency]decimal.Decimal{
	domain.FrequencyWeekly:    decimal.RequireFromString("4.33"),
	domain.FrequencyMonthly:   decimal.NewFromInt(1),
	domain.FrequencyQuarterly: decimal.RequireFromString("0.333"),
	domain.FrequencyYearly:    decimal.RequireFromString("0.083"),
}

var frequencyOrder = []domain.Frequency{
	domain.FrequencyWeekly,
	domain.FrequencyMonthly,
	domain.FrequencyQuarterly,
	domain.FrequencyYearly,
}
