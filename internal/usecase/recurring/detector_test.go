package recurring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

func expense(payee string, date string, amount string) *domain.Transaction {
	d, _ := time.Parse(time.DateOnly, date)
	return &domain.Transaction{
		ID:          uuid.New(),
		BookingDate: d,
		Amount:      decimal.RequireFromString(amount),
		Currency:    "EUR",
		Payee:       &payee,
	}
}

func decs(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func TestDetect_MonthlySubscription(t *testing.T) {
	txs := []*domain.Transaction{
		expense("Netflix", "2024-01-03", "-12.99"),
		expense("netflix ", "2024-01-31", "-12.99"),
		expense("NETFLIX", "2024-03-01", "-12.99"),
		expense("Netflix", "2024-03-31", "-12.99"),
		expense("Netflix", "2024-05-01", "-12.99"),
		expense("Netflix", "2024-05-30", "-12.99"),
	}

	got := Detect(GroupByPayee(txs), DefaultConfig())

	require.Len(t, got, 1)
	d := got[0]
	assert.Equal(t, "netflix", d.Payee)
	assert.Equal(t, domain.FrequencyMonthly, d.Frequency)
	assert.True(t, d.Confidence.GreaterThan(decimal.RequireFromString("0.7")))
	assert.True(t, decimal.NewFromInt(1).Equal(d.Confidence), "confidence capped at 1, got %s", d.Confidence)
	assert.Equal(t, 6, d.OccurrenceCount)
	assert.True(t, decimal.RequireFromString("12.99").Equal(d.TypicalAmount))
	assert.Equal(t, "2024-05-30", d.LastSeen.Format(time.DateOnly))
}

func TestDetect_Rejections(t *testing.T) {
	tests := []struct {
		name string
		txs  []*domain.Transaction
	}{
		{"below min occurrences", []*domain.Transaction{
			expense("Gym", "2024-01-01", "-30"),
			expense("Gym", "2024-02-01", "-30"),
		}},
		{"irregular intervals", []*domain.Transaction{
			expense("Bakery", "2024-01-01", "-3"),
			expense("Bakery", "2024-01-02", "-3"),
			expense("Bakery", "2024-01-03", "-3"),
			expense("Bakery", "2024-01-04", "-3"),
		}},
		{"zero median", []*domain.Transaction{
			expense("Free", "2024-01-01", "0"),
			expense("Free", "2024-02-01", "0"),
			expense("Free", "2024-03-01", "0"),
		}},
		{"low confidence", []*domain.Transaction{
			expense("Mixed", "2024-01-01", "-10"),
			expense("Mixed", "2024-02-01", "-90"),
			expense("Mixed", "2024-02-03", "-10"),
			expense("Mixed", "2024-02-05", "-50"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Detect([]Group{{Payee: "x", Transactions: tt.txs}}, DefaultConfig()))
		})
	}
}

func TestGroupByPayee(t *testing.T) {
	income := expense("Employer", "2024-01-01", "2000")
	var noPayee = expense("", "2024-01-01", "-1")
	noPayee.Payee = nil

	groups := GroupByPayee([]*domain.Transaction{
		expense(" Spotify", "2024-01-01", "-9.99"),
		income,
		noPayee,
		expense("   ", "2024-01-01", "-1"),
		expense("Rent", "2024-01-01", "-800"),
		expense("spotify", "2024-02-01", "-9.99"),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "spotify", groups[0].Payee)
	assert.Len(t, groups[0].Transactions, 2)
	assert.Equal(t, "rent", groups[1].Payee)
}

func TestClassify(t *testing.T) {
	bands := DefaultConfig().Bands

	tests := []struct {
		name      string
		intervals []int
		want      domain.Frequency
		fraction  string
		ok        bool
	}{
		{"weekly", []int{7, 7, 6}, domain.FrequencyWeekly, "1.00", true},
		{"band edges inclusive", []int{25, 38}, domain.FrequencyMonthly, "1.00", true},
		{"majority wins", []int{30, 31, 7}, domain.FrequencyMonthly, "0.67", true},
		{"tie goes to earlier band", []int{7, 30}, domain.FrequencyWeekly, "0.50", true},
		{"tie quarterly vs yearly", []int{90, 365}, domain.FrequencyQuarterly, "0.50", true},
		{"nothing matches", []int{1, 2, 15}, "", "0.00", false},
		{"no intervals", nil, "", "0.00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			freq, fraction, ok := Classify(tt.intervals, bands)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, freq)
			assert.Equal(t, tt.fraction, fraction.StringFixed(2))
		})
	}
}

func TestMedian(t *testing.T) {
	assert.True(t, decimal.NewFromInt(3).Equal(Median(decs("5", "1", "3"))))
	assert.True(t, decimal.RequireFromString("2.5").Equal(Median(decs("4", "1", "2", "3"))))
	assert.True(t, decimal.Zero.Equal(Median(nil)))
}

func TestBonusTiers(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		cv   string
		want string
	}{
		{"0", "0.15"},
		{"0.05", "0.15"},
		{"0.06", "0.10"},
		{"0.10", "0.10"},
		{"0.2", "0.05"},
		{"0.21", "0"},
	}

	for _, tt := range tests {
		got := cfg.bonus(decimal.RequireFromString(tt.cv))
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "cv=%s got %s", tt.cv, got)
	}
}

func TestVariationCoefficient(t *testing.T) {
	values := decs("90", "100", "110")
	cv := VariationCoefficient(values, Median(values))
	// mean |dev| = 20/3, divided by 100
	assert.Equal(t, "0.0667", cv.StringFixed(4))
}

func TestModeCategory(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	withCategory := func(id *uuid.UUID) *domain.Transaction {
		tx := expense("x", "2024-01-01", "-1")
		tx.CategoryID = id
		return tx
	}

	got := modeCategory([]*domain.Transaction{withCategory(&b), withCategory(nil), withCategory(&a), withCategory(&a), withCategory(&b)})
	require.NotNil(t, got)
	assert.Equal(t, b, *got)

	assert.Nil(t, modeCategory([]*domain.Transaction{withCategory(nil)}))
}
