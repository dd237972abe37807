package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// recurringPatternRepository implements domain.RecurringPatternRepository
type recurringPatternRepository struct {
	db *DB
}

// NewRecurringPatternRepository creates a new recurring pattern repository
func NewRecurringPatternRepository(db *DB) domain.RecurringPatternRepository {
	return &recurringPatternRepository{db: db}
}

const patternColumns = `id, account_id, payee, typical_amount, frequency, confidence,
	last_seen, occurrence_count, is_active, user_confirmed, category_id`

func scanPattern(row interface{ Scan(...any) error }) (*domain.RecurringPattern, error) {
	var (
		p                        domain.RecurringPattern
		amountStr, confidenceStr string
		categoryID               sql.NullString
	)
	err := row.Scan(
		&p.ID,
		&p.AccountID,
		&p.Payee,
		&amountStr,
		&p.Frequency,
		&confidenceStr,
		&p.LastSeen,
		&p.OccurrenceCount,
		&p.IsActive,
		&p.UserConfirmed,
		&categoryID,
	)
	if err != nil {
		return nil, err
	}
	if p.TypicalAmount, err = parseDecimal("typical_amount", amountStr); err != nil {
		return nil, err
	}
	if p.Confidence, err = parseDecimal("confidence", confidenceStr); err != nil {
		return nil, err
	}
	if p.CategoryID, err = parseNullableUUID("category_id", categoryID); err != nil {
		return nil, err
	}
	p.LastSeen = domain.Date(p.LastSeen)
	return &p, nil
}

// ListByAccount retrieves an account's patterns ordered by payee
func (r *recurringPatternRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, includeInactive bool) ([]*domain.RecurringPattern, error) {
	query := `SELECT ` + patternColumns + ` FROM recurring_patterns WHERE account_id = $1`
	if !includeInactive {
		query += ` AND is_active`
	}
	query += ` ORDER BY payee ASC, frequency ASC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring patterns: %w", err)
	}
	defer rows.Close()

	patterns := []*domain.RecurringPattern{}
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring pattern: %w", err)
		}
		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring patterns: %w", err)
	}

	return patterns, nil
}

// GetByID retrieves a pattern by its ID
func (r *recurringPatternRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurringPattern, error) {
	query := `SELECT ` + patternColumns + ` FROM recurring_patterns WHERE id = $1`

	p, err := scanPattern(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("recurring pattern", id)
		}
		return nil, fmt.Errorf("failed to get recurring pattern: %w", err)
	}
	return p, nil
}

// ApplyMerge writes created, updated and deactivated patterns in one database transaction
func (r *recurringPatternRepository) ApplyMerge(ctx context.Context, merge *domain.RecurringMerge) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	insertQuery := `
		INSERT INTO recurring_patterns (` + patternColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for _, p := range merge.Created {
		_, err := dbTx.ExecContext(ctx, insertQuery,
			p.ID,
			p.AccountID,
			p.Payee,
			p.TypicalAmount.StringFixed(2),
			string(p.Frequency),
			p.Confidence.StringFixed(2),
			p.LastSeen,
			p.OccurrenceCount,
			p.IsActive,
			p.UserConfirmed,
			nullableUUID(p.CategoryID),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("recurring pattern %q (%s) already exists: %w", p.Payee, p.Frequency, domain.ErrDuplicate)
			}
			return fmt.Errorf("failed to insert recurring pattern: %w", err)
		}
	}

	// is_active of a user-confirmed pattern is only changed through UpdateFlags,
	// even if the user confirmed it after the merge was computed.
	updateQuery := `
		UPDATE recurring_patterns
		SET typical_amount = $2, confidence = $3, last_seen = $4, occurrence_count = $5,
			category_id = $6,
			is_active = CASE WHEN user_confirmed THEN is_active ELSE $7 END,
			updated_at = now()
		WHERE id = $1
	`
	for _, p := range merge.Updated {
		_, err := dbTx.ExecContext(ctx, updateQuery,
			p.ID,
			p.TypicalAmount.StringFixed(2),
			p.Confidence.StringFixed(2),
			p.LastSeen,
			p.OccurrenceCount,
			nullableUUID(p.CategoryID),
			p.IsActive,
		)
		if err != nil {
			return fmt.Errorf("failed to update recurring pattern: %w", err)
		}
	}

	for _, p := range merge.Deactivated {
		_, err := dbTx.ExecContext(ctx,
			`UPDATE recurring_patterns SET is_active = FALSE, updated_at = now() WHERE id = $1 AND NOT user_confirmed`,
			p.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to deactivate recurring pattern: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateFlags persists is_active and user_confirmed
func (r *recurringPatternRepository) UpdateFlags(ctx context.Context, pattern *domain.RecurringPattern) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_patterns SET is_active = $2, user_confirmed = $3, updated_at = now() WHERE id = $1`,
		pattern.ID,
		pattern.IsActive,
		pattern.UserConfirmed,
	)
	if err != nil {
		return fmt.Errorf("failed to update recurring pattern flags: %w", err)
	}
	return expectAffected(res, "recurring pattern", pattern.ID)
}
