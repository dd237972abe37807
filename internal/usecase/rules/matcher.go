package rules

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// Match returns the category of the first rule whose predicate holds for tx,
// or nil. rules must already be ordered by position ascending.
func Match(tx *domain.Transaction, rules []*domain.CategorizationRule) *uuid.UUID {
	for _, rule := range rules {
		if Matches(tx, rule) {
			categoryID := rule.CategoryID
			return &categoryID
		}
	}
	return nil
}

// Matches evaluates a single rule. Unknown fields or operators, non-numeric
// amount thresholds and absent text fields all evaluate to false.
func Matches(tx *domain.Transaction, rule *domain.CategorizationRule) bool {
	switch rule.Field {
	case domain.RuleFieldAmount:
		return matchAmount(tx.Amount, rule.Operator, rule.Value)
	case domain.RuleFieldPayee:
		return matchText(tx.Payee, rule.Operator, rule.Value)
	case domain.RuleFieldPurpose:
		return matchText(tx.Purpose, rule.Operator, rule.Value)
	default:
		return false
	}
}

func matchText(field *string, op domain.RuleOperator, value string) bool {
	if field == nil {
		return false
	}
	text := strings.ToLower(strings.TrimSpace(*field))
	needle := strings.ToLower(strings.TrimSpace(value))

	switch op {
	case domain.OperatorContains:
		return strings.Contains(text, needle)
	case domain.OperatorExact:
		return text == needle
	case domain.OperatorStartsWith:
		return strings.HasPrefix(text, needle)
	case domain.OperatorEndsWith:
		return strings.HasSuffix(text, needle)
	default:
		return false
	}
}

func matchAmount(amount decimal.Decimal, op domain.RuleOperator, value string) bool {
	threshold, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return false
	}

	switch op {
	case domain.OperatorEq:
		return amount.Equal(threshold)
	case domain.OperatorGt:
		return amount.GreaterThan(threshold)
	case domain.OperatorLt:
		return amount.LessThan(threshold)
	case domain.OperatorGte:
		return amount.GreaterThanOrEqual(threshold)
	case domain.OperatorLte:
		return amount.LessThanOrEqual(threshold)
	default:
		return false
	}
}
