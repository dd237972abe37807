package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// ruleRepository implements domain.RuleRepository
type ruleRepository struct {
	db *DB
}

// NewRuleRepository creates a new categorization rule repository
func NewRuleRepository(db *DB) domain.RuleRepository {
	return &ruleRepository{db: db}
}

const ruleColumns = `id, position, field, operator, value, category_id`

func scanRule(row interface{ Scan(...any) error }) (*domain.CategorizationRule, error) {
	var rule domain.CategorizationRule
	err := row.Scan(
		&rule.ID,
		&rule.Position,
		&rule.Field,
		&rule.Operator,
		&rule.Value,
		&rule.CategoryID,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// List retrieves all rules ordered by position
func (r *ruleRepository) List(ctx context.Context) ([]*domain.CategorizationRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM categorization_rules ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categorization rules: %w", err)
	}
	defer rows.Close()

	rules := []*domain.CategorizationRule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan categorization rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categorization rules: %w", err)
	}

	return rules, nil
}

// GetByID retrieves a rule by its ID
func (r *ruleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CategorizationRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM categorization_rules WHERE id = $1`

	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("categorization rule", id)
		}
		return nil, fmt.Errorf("failed to get categorization rule: %w", err)
	}
	return rule, nil
}

// MaxPosition returns the highest position, 0 when empty
func (r *ruleRepository) MaxPosition(ctx context.Context) (int, error) {
	var maxPos int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) FROM categorization_rules`).Scan(&maxPos)
	if err != nil {
		return 0, fmt.Errorf("failed to get max rule position: %w", err)
	}
	return maxPos, nil
}

// Create inserts a rule
func (r *ruleRepository) Create(ctx context.Context, rule *domain.CategorizationRule) error {
	query := `
		INSERT INTO categorization_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.Position,
		string(rule.Field),
		string(rule.Operator),
		rule.Value,
		rule.CategoryID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("rule position %d is taken: %w", rule.Position, domain.ErrDuplicate)
		}
		return fmt.Errorf("failed to create categorization rule: %w", err)
	}

	return nil
}

// Update persists field, operator, value and category of a rule
func (r *ruleRepository) Update(ctx context.Context, rule *domain.CategorizationRule) error {
	query := `
		UPDATE categorization_rules
		SET field = $2, operator = $3, value = $4, category_id = $5
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		rule.ID,
		string(rule.Field),
		string(rule.Operator),
		rule.Value,
		rule.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("failed to update categorization rule: %w", err)
	}
	return expectAffected(res, "categorization rule", rule.ID)
}

// Delete removes a rule
func (r *ruleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categorization_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete categorization rule: %w", err)
	}
	return expectAffected(res, "categorization rule", id)
}

// ApplyPositions writes each phase in order inside a single database
// transaction, so readers never observe a partially renumbered list
func (r *ruleRepository) ApplyPositions(ctx context.Context, phases ...[]domain.RulePosition) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `UPDATE categorization_rules SET position = $1 WHERE id = $2`)
	if err != nil {
		return fmt.Errorf("failed to prepare position update: %w", err)
	}
	defer stmt.Close()

	for _, phase := range phases {
		for _, p := range phase {
			if _, err := stmt.ExecContext(ctx, p.Position, p.RuleID); err != nil {
				return fmt.Errorf("failed to move rule %s to position %d: %w", p.RuleID, p.Position, err)
			}
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func expectAffected(res sql.Result, entity string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.NotFoundError(entity, id)
	}
	return nil
}
