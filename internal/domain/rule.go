package domain

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// RuleField is the transaction attribute a rule inspects.
type RuleField string

const (
	RuleFieldPayee   RuleField = "payee"
	RuleFieldPurpose RuleField = "purpose"
	RuleFieldAmount  RuleField = "amount"
)

// RuleOperator is the comparison a rule applies.
type RuleOperator string

const (
	// Text operators (case-insensitive, trimmed)
	OperatorContains   RuleOperator = "contains"
	OperatorExact      RuleOperator = "exact"
	OperatorStartsWith RuleOperator = "starts_with"
	OperatorEndsWith   RuleOperator = "ends_with"

	// Amount operators (decimal comparison)
	OperatorEq  RuleOperator = "eq"
	OperatorGt  RuleOperator = "gt"
	OperatorLt  RuleOperator = "lt"
	OperatorGte RuleOperator = "gte"
	OperatorLte RuleOperator = "lte"
)

// MaxRuleValueLength bounds CategorizationRule.Value.
const MaxRuleValueLength = 255

// CategorizationRule assigns CategoryID to transactions matching its predicate.
// Rules are evaluated by ascending Position; the first match wins.
type CategorizationRule struct {
	ID         uuid.UUID
	Position   int // unique, ascending
	Field      RuleField
	Operator   RuleOperator
	Value      string
	CategoryID uuid.UUID
}

// Validate ensures the rule adheres to domain rules.
// Field/operator combinations are not cross-checked: a mismatched pair simply never matches.
func (r *CategorizationRule) Validate() error {
	if !r.Field.Valid() {
		return errors.New("rule field must be payee, purpose, or amount")
	}
	if !r.Operator.Valid() {
		return errors.New("rule operator is not supported")
	}
	if n := utf8.RuneCountInString(r.Value); n < 1 || n > MaxRuleValueLength {
		return errors.New("rule value must be between 1 and 255 characters")
	}
	// Matching trims the value, so a blank one would match every transaction.
	if strings.TrimSpace(r.Value) == "" {
		return errors.New("rule value must not be blank")
	}
	if r.CategoryID == uuid.Nil {
		return errors.New("rule must reference a category")
	}
	return nil
}

// Valid reports whether f is a known rule field
func (f RuleField) Valid() bool {
	switch f {
	case RuleFieldPayee, RuleFieldPurpose, RuleFieldAmount:
		return true
	}
	return false
}

// Valid reports whether o is a known rule operator
func (o RuleOperator) Valid() bool {
	switch o {
	case OperatorContains, OperatorExact, OperatorStartsWith, OperatorEndsWith,
		OperatorEq, OperatorGt, OperatorLt, OperatorGte, OperatorLte:
		return true
	}
	return false
}

// RulePosition assigns a position to a rule during renumbering.
type RulePosition struct {
	RuleID   uuid.UUID
	Position int
}
