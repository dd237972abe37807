// Package recurring detects recurring bills from payee history.
package recurring

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// UpdatePatternInput is a partial patch of the user-controlled flags.
type UpdatePatternInput struct {
	IsActive      *bool
	UserConfirmed *bool
}

// FrequencyTotal aggregates the active patterns of one frequency.
type FrequencyTotal struct {
	Frequency domain.Frequency `json:"frequency"`
	Count     int              `json:"count"`
	Total     decimal.Decimal  `json:"total"`
}

// Summary is the monthly cost of an account's active recurring patterns.
type Summary struct {
	AccountID             uuid.UUID        `json:"account_id"`
	TotalMonthlyRecurring decimal.Decimal  `json:"total_monthly_recurring"`
	PatternCount          int              `json:"pattern_count"`
	ByFrequency           []FrequencyTotal `json:"by_frequency"`
}

// RecurringService handles recurring pattern detection and review
type RecurringService struct {
	AccountRepo     domain.AccountRepository
	TransactionRepo domain.TransactionRepository
	PatternRepo     domain.RecurringPatternRepository
	Logger          logrus.FieldLogger
	Config          Config
}

// NewRecurringService creates a new RecurringService instance
func NewRecurringService(
	accountRepo domain.AccountRepository,
	transactionRepo domain.TransactionRepository,
	patternRepo domain.RecurringPatternRepository,
	logger logrus.FieldLogger,
	cfg Config,
) *RecurringService {
	return &RecurringService{
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		PatternRepo:     patternRepo,
		Logger:          logger,
		Config:          cfg,
	}
}

// Detect runs detection over one account's expenses and persists the merge.
// It returns the created and updated patterns.
func (s *RecurringService) Detect(ctx context.Context, accountID uuid.UUID) ([]*domain.RecurringPattern, error) {
	if _, err := s.AccountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	txs, err := s.TransactionRepo.List(ctx, domain.TransactionFilter{
		AccountID:    &accountID,
		Sign:         domain.SignNegative,
		RequirePayee: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}

	existing, err := s.PatternRepo.ListByAccount(ctx, accountID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load recurring patterns: %w", err)
	}

	groups := GroupByPayee(txs)
	detections := Detect(groups, s.Config)
	merge := Merge(accountID, detections, existing)

	if err := s.PatternRepo.ApplyMerge(ctx, merge); err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"account_id":  accountID,
		"groups":      len(groups),
		"created":     len(merge.Created),
		"updated":     len(merge.Updated),
		"deactivated": len(merge.Deactivated),
	}).Info("recurring detection completed")

	return merge.Patterns(), nil
}

// List returns an account's patterns ordered by payee.
func (s *RecurringService) List(ctx context.Context, accountID uuid.UUID, includeInactive bool) ([]*domain.RecurringPattern, error) {
	if _, err := s.AccountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.PatternRepo.ListByAccount(ctx, accountID, includeInactive)
}

// Update patches is_active and user_confirmed.
func (s *RecurringService) Update(ctx context.Context, id uuid.UUID, input UpdatePatternInput) (*domain.RecurringPattern, error) {
	pattern, err := s.PatternRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.IsActive != nil {
		pattern.IsActive = *input.IsActive
	}
	if input.UserConfirmed != nil {
		pattern.UserConfirmed = *input.UserConfirmed
	}

	if err := s.PatternRepo.UpdateFlags(ctx, pattern); err != nil {
		return nil, err
	}
	return pattern, nil
}

// Summary totals the active patterns of an account per frequency and
// normalises them to a monthly amount.
func (s *RecurringService) Summary(ctx context.Context, accountID uuid.UUID) (*Summary, error) {
	patterns, err := s.List(ctx, accountID, false)
	if err != nil {
		return nil, err
	}
	return Summarize(accountID, patterns), nil
}

// Summarize builds a Summary from active patterns. Frequencies without a
// pattern are omitted.
func Summarize(accountID uuid.UUID, patterns []*domain.RecurringPattern) *Summary {
	totals := make(map[domain.Frequency]*FrequencyTotal)
	count := 0
	for _, p := range patterns {
		if !p.IsActive {
			continue
		}
		count++
		ft, ok := totals[p.Frequency]
		if !ok {
			ft = &FrequencyTotal{Frequency: p.Frequency, Total: decimal.Zero}
			totals[p.Frequency] = ft
		}
		ft.Count++
		ft.Total = ft.Total.Add(p.TypicalAmount)
	}

	summary := &Summary{
		AccountID:             accountID,
		TotalMonthlyRecurring: decimal.Zero,
		PatternCount:          count,
		ByFrequency:           []FrequencyTotal{},
	}
	monthly := decimal.Zero
	for _, f := range frequencyOrder {
		ft, ok := totals[f]
		if !ok {
			continue
		}
		monthly = monthly.Add(ft.Total.Mul(monthlyFactor[f]))
		summary.ByFrequency = append(summary.ByFrequency, *ft)
	}
	summary.TotalMonthlyRecurring = monthly.Round(2)
	return summary
}
