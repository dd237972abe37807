// Package rules evaluates and manages the ordered categorization rule list.
package rules

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// CreateRuleInput represents the input for creating a rule
type CreateRuleInput struct {
	Field      domain.RuleField
	Operator   domain.RuleOperator
	Value      string
	CategoryID uuid.UUID
}

// UpdateRuleInput is a partial update; nil fields are left unchanged.
type UpdateRuleInput struct {
	Field      *domain.RuleField
	Operator   *domain.RuleOperator
	Value      *string
	CategoryID *uuid.UUID
}

// ApplyResult reports a bulk categorization run.
type ApplyResult struct {
	Scanned     int
	Categorized int
}

// RuleService handles categorization rule operations
type RuleService struct {
	RuleRepo        domain.RuleRepository
	CategoryRepo    domain.CategoryRepository
	TransactionRepo domain.TransactionRepository
	Logger          logrus.FieldLogger
}

// NewRuleService creates a new RuleService instance
func NewRuleService(
	ruleRepo domain.RuleRepository,
	categoryRepo domain.CategoryRepository,
	transactionRepo domain.TransactionRepository,
	logger logrus.FieldLogger,
) *RuleService {
	return &RuleService{
		RuleRepo:        ruleRepo,
		CategoryRepo:    categoryRepo,
		TransactionRepo: transactionRepo,
		Logger:          logger,
	}
}

// List returns all rules ordered by position
func (s *RuleService) List(ctx context.Context) ([]*domain.CategorizationRule, error) {
	return s.RuleRepo.List(ctx)
}

// Create appends a new rule after the current last position
func (s *RuleService) Create(ctx context.Context, input CreateRuleInput) (*domain.CategorizationRule, error) {
	rule := &domain.CategorizationRule{
		ID:         uuid.New(),
		Field:      input.Field,
		Operator:   input.Operator,
		Value:      input.Value,
		CategoryID: input.CategoryID,
	}
	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.CategoryRepo.GetByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	maxPos, err := s.RuleRepo.MaxPosition(ctx)
	if err != nil {
		return nil, err
	}
	rule.Position = maxPos + 1

	if err := s.RuleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{"rule_id": rule.ID, "position": rule.Position}).Info("rule created")
	return rule, nil
}

// Update applies a partial update to an existing rule
func (s *RuleService) Update(ctx context.Context, id uuid.UUID, input UpdateRuleInput) (*domain.CategorizationRule, error) {
	rule, err := s.RuleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Field != nil {
		rule.Field = *input.Field
	}
	if input.Operator != nil {
		rule.Operator = *input.Operator
	}
	if input.Value != nil {
		rule.Value = *input.Value
	}
	if input.CategoryID != nil {
		if _, err := s.CategoryRepo.GetByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		rule.CategoryID = *input.CategoryID
	}

	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.RuleRepo.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// Delete removes a rule. Remaining positions keep their gaps.
func (s *RuleService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.RuleRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.RuleRepo.Delete(ctx, id)
}

// Reorder assigns positions 1..n in the order of ruleIDs, which must name
// every existing rule exactly once.
func (s *RuleService) Reorder(ctx context.Context, ruleIDs []uuid.UUID) ([]*domain.CategorizationRule, error) {
	existing, err := s.RuleRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*domain.CategorizationRule, len(existing))
	for _, r := range existing {
		byID[r.ID] = r
	}

	if err := checkPermutation(ruleIDs, byID); err != nil {
		return nil, err
	}

	staged, final := PlanReorder(ruleIDs)
	if err := s.RuleRepo.ApplyPositions(ctx, staged, final); err != nil {
		return nil, err
	}

	ordered := make([]*domain.CategorizationRule, 0, len(final))
	for _, p := range final {
		r := byID[p.RuleID]
		r.Position = p.Position
		ordered = append(ordered, r)
	}

	s.Logger.WithField("rules", len(ordered)).Info("rules reordered")
	return ordered, nil
}

// PlanReorder returns the two renumbering phases: every rule is first moved
// to a disjoint negative range, then to its final 1-based position, so the
// position uniqueness constraint holds after every single write.
func PlanReorder(ruleIDs []uuid.UUID) (staged, final []domain.RulePosition) {
	staged = make([]domain.RulePosition, len(ruleIDs))
	final = make([]domain.RulePosition, len(ruleIDs))
	for i, id := range ruleIDs {
		staged[i] = domain.RulePosition{RuleID: id, Position: -(i + 1)}
		final[i] = domain.RulePosition{RuleID: id, Position: i + 1}
	}
	return staged, final
}

func checkPermutation(ids []uuid.UUID, existing map[uuid.UUID]*domain.CategorizationRule) error {
	if len(ids) != len(existing) {
		return fmt.Errorf("%w: rule_ids must contain all %d existing rules, got %d", domain.ErrValidation, len(existing), len(ids))
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			return fmt.Errorf("%w: unknown rule id %s", domain.ErrValidation, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate rule id %s", domain.ErrValidation, id)
		}
		seen[id] = true
	}
	return nil
}

// ApplyToUncategorized scans every uncategorized transaction once and
// assigns the first matching category. Unmatched rows stay uncategorized.
func (s *RuleService) ApplyToUncategorized(ctx context.Context) (*ApplyResult, error) {
	ruleList, err := s.RuleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(ruleList) == 0 {
		return &ApplyResult{}, nil
	}

	txs, err := s.TransactionRepo.List(ctx, domain.TransactionFilter{Uncategorized: true})
	if err != nil {
		return nil, err
	}

	assignments := make(map[uuid.UUID]uuid.UUID)
	for _, tx := range txs {
		if categoryID := Match(tx, ruleList); categoryID != nil {
			assignments[tx.ID] = *categoryID
		}
	}

	if len(assignments) > 0 {
		if err := s.TransactionRepo.AssignCategories(ctx, assignments); err != nil {
			return nil, err
		}
	}

	result := &ApplyResult{Scanned: len(txs), Categorized: len(assignments)}
	s.Logger.WithFields(logrus.Fields{
		"scanned":     result.Scanned,
		"categorized": result.Categorized,
	}).Info("rules applied to uncategorized transactions")
	return result, nil
}
