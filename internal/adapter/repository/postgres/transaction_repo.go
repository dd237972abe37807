package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

// Create inserts a transaction. The (account_id, import_hash) constraint
// is the idempotency guard: a violation is reported as domain.ErrDuplicate.
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, account_id, booking_date, amount, currency, payee, purpose,
			category_id, external_id, import_source, import_hash, is_transfer
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.AccountID,
		tx.BookingDate,
		tx.Amount.StringFixed(2),
		tx.Currency,
		nullableString(tx.Payee),
		nullableString(tx.Purpose),
		nullableUUID(tx.CategoryID),
		nullableString(tx.ExternalID),
		tx.ImportSource,
		tx.ImportHash,
		tx.IsTransfer,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transaction with hash %s already imported: %w", tx.ImportHash, domain.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// List retrieves transactions matching the filter
func (r *transactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		conditions = append(conditions, fmt.Sprintf("account_id = $%d", len(args)))
	}
	switch filter.Sign {
	case domain.SignNegative:
		conditions = append(conditions, "amount < 0")
	case domain.SignPositive:
		conditions = append(conditions, "amount > 0")
	}
	if filter.RequirePayee {
		conditions = append(conditions, "payee IS NOT NULL")
	}
	if filter.Uncategorized {
		conditions = append(conditions, "category_id IS NULL")
	}

	query := `
		SELECT id, account_id, booking_date, amount, currency, payee, purpose,
			category_id, external_id, import_source, import_hash, is_transfer
		FROM transactions
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY booking_date ASC, amount ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*domain.Transaction{}
	for rows.Next() {
		var (
			tx                         domain.Transaction
			amountStr                  string
			payee, purpose, externalID sql.NullString
			categoryID                 sql.NullString
		)

		err := rows.Scan(
			&tx.ID,
			&tx.AccountID,
			&tx.BookingDate,
			&amountStr,
			&tx.Currency,
			&payee,
			&purpose,
			&categoryID,
			&externalID,
			&tx.ImportSource,
			&tx.ImportHash,
			&tx.IsTransfer,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if tx.Amount, err = parseDecimal("amount", amountStr); err != nil {
			return nil, err
		}
		if tx.CategoryID, err = parseNullableUUID("category_id", categoryID); err != nil {
			return nil, err
		}
		tx.Payee = stringPtr(payee)
		tx.Purpose = stringPtr(purpose)
		tx.ExternalID = stringPtr(externalID)
		tx.BookingDate = domain.Date(tx.BookingDate)

		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// AssignCategories sets category_id on every listed transaction in one database transaction
func (r *transactionRepository) AssignCategories(ctx context.Context, assignments map[uuid.UUID]uuid.UUID) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `UPDATE transactions SET category_id = $1 WHERE id = $2`)
	if err != nil {
		return fmt.Errorf("failed to prepare category update: %w", err)
	}
	defer stmt.Close()

	for txID, categoryID := range assignments {
		if _, err := stmt.ExecContext(ctx, categoryID, txID); err != nil {
			return fmt.Errorf("failed to assign category to transaction %s: %w", txID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
