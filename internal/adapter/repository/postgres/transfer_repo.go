package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// transferCandidateRepository implements domain.TransferCandidateRepository
type transferCandidateRepository struct {
	db *DB
}

// NewTransferCandidateRepository creates a new transfer candidate repository
func NewTransferCandidateRepository(db *DB) domain.TransferCandidateRepository {
	return &transferCandidateRepository{db: db}
}

const candidateColumns = `id, from_transaction_id, to_transaction_id, confidence, status, created_at`

func scanCandidate(row interface{ Scan(...any) error }) (*domain.TransferCandidate, error) {
	var (
		c             domain.TransferCandidate
		confidenceStr string
	)
	err := row.Scan(
		&c.ID,
		&c.FromTransactionID,
		&c.ToTransactionID,
		&confidenceStr,
		&c.Status,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.Confidence, err = parseDecimal("confidence", confidenceStr); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateBatch inserts candidates in one database transaction. A pair tracked
// by a concurrent detection run is skipped rather than failing the batch.
func (r *transferCandidateRepository) CreateBatch(ctx context.Context, candidates []*domain.TransferCandidate) ([]*domain.TransferCandidate, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transfer_candidates (`+candidateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (from_transaction_id, to_transaction_id) DO NOTHING
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare candidate insert: %w", err)
	}
	defer stmt.Close()

	inserted := make([]*domain.TransferCandidate, 0, len(candidates))
	for _, c := range candidates {
		res, err := stmt.ExecContext(ctx,
			c.ID,
			c.FromTransactionID,
			c.ToTransactionID,
			c.Confidence.StringFixed(2),
			string(c.Status),
			c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert transfer candidate: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n > 0 {
			inserted = append(inserted, c)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}

// ExistingPairs returns every tracked pair regardless of status
func (r *transferCandidateRepository) ExistingPairs(ctx context.Context) (map[domain.TransferPair]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT from_transaction_id, to_transaction_id FROM transfer_candidates`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer pairs: %w", err)
	}
	defer rows.Close()

	pairs := make(map[domain.TransferPair]struct{})
	for rows.Next() {
		var pair domain.TransferPair
		if err := rows.Scan(&pair.From, &pair.To); err != nil {
			return nil, fmt.Errorf("failed to scan transfer pair: %w", err)
		}
		pairs[pair] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer pairs: %w", err)
	}

	return pairs, nil
}

// List retrieves candidates by status, all when status is empty
func (r *transferCandidateRepository) List(ctx context.Context, status domain.TransferStatus) ([]*domain.TransferCandidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM transfer_candidates`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer candidates: %w", err)
	}
	defer rows.Close()

	candidates := []*domain.TransferCandidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer candidate: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer candidates: %w", err)
	}

	return candidates, nil
}

// GetByID retrieves a candidate by its ID
func (r *transferCandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TransferCandidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM transfer_candidates WHERE id = $1`

	c, err := scanCandidate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("transfer candidate", id)
		}
		return nil, fmt.Errorf("failed to get transfer candidate: %w", err)
	}
	return c, nil
}

// Confirm persists the confirmed status and flags both legs as transfers
func (r *transferCandidateRepository) Confirm(ctx context.Context, candidate *domain.TransferCandidate) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := updatePendingStatus(ctx, dbTx, candidate); err != nil {
		return err
	}

	_, err = dbTx.ExecContext(ctx,
		`UPDATE transactions SET is_transfer = TRUE WHERE id IN ($1, $2)`,
		candidate.FromTransactionID,
		candidate.ToTransactionID,
	)
	if err != nil {
		return fmt.Errorf("failed to flag transfer legs: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateStatus persists the candidate's status
func (r *transferCandidateRepository) UpdateStatus(ctx context.Context, candidate *domain.TransferCandidate) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := updatePendingStatus(ctx, dbTx, candidate); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// updatePendingStatus only moves candidates that are still pending in the
// database, so two concurrent reviewers cannot both win.
func updatePendingStatus(ctx context.Context, dbTx *sql.Tx, candidate *domain.TransferCandidate) error {
	res, err := dbTx.ExecContext(ctx,
		`UPDATE transfer_candidates SET status = $2 WHERE id = $1 AND status = 'pending'`,
		candidate.ID,
		string(candidate.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to update transfer candidate status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transfer candidate %s is no longer pending: %w", candidate.ID, domain.ErrConflict)
	}
	return nil
}
