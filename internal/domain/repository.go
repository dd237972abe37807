package domain

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for account lookups
type AccountRepository interface {
	// GetByID retrieves an account by its ID, wrapping ErrNotFound if absent
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// List retrieves all accounts
	List(ctx context.Context) ([]*Account, error)
}

// CategoryRepository defines the interface for category lookups
type CategoryRepository interface {
	// GetByID retrieves a category by its ID, wrapping ErrNotFound if absent
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
}

// TransactionRepository defines the interface for transaction persistence operations
type TransactionRepository interface {
	// Create inserts a transaction.
	// A violation of the (account_id, import_hash) constraint wraps ErrDuplicate.
	Create(ctx context.Context, tx *Transaction) error

	// List retrieves transactions matching the filter, ordered by booking date then amount
	List(ctx context.Context, filter TransactionFilter) ([]*Transaction, error)

	// AssignCategories sets category_id for each transaction ID in one atomic write
	AssignCategories(ctx context.Context, assignments map[uuid.UUID]uuid.UUID) error
}

// RuleRepository defines the interface for categorization rule persistence operations
type RuleRepository interface {
	// List retrieves all rules ordered by position ascending
	List(ctx context.Context) ([]*CategorizationRule, error)

	// GetByID retrieves a rule, wrapping ErrNotFound if absent
	GetByID(ctx context.Context, id uuid.UUID) (*CategorizationRule, error)

	// MaxPosition returns the highest position in use, or 0 when there are no rules
	MaxPosition(ctx context.Context) (int, error)

	Create(ctx context.Context, rule *CategorizationRule) error
	Update(ctx context.Context, rule *CategorizationRule) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ApplyPositions writes each phase of position assignments in order,
	// all inside a single database transaction
	ApplyPositions(ctx context.Context, phases ...[]RulePosition) error
}

// TransferCandidateRepository defines the interface for transfer candidate persistence operations
type TransferCandidateRepository interface {
	// CreateBatch inserts the candidates atomically, skipping pairs that are
	// already tracked, and returns the ones it inserted
	CreateBatch(ctx context.Context, candidates []*TransferCandidate) ([]*TransferCandidate, error)

	// ExistingPairs returns every tracked pair regardless of status
	ExistingPairs(ctx context.Context) (map[TransferPair]struct{}, error)

	// List retrieves candidates with the given status; an empty status returns all
	List(ctx context.Context, status TransferStatus) ([]*TransferCandidate, error)

	// GetByID retrieves a candidate, wrapping ErrNotFound if absent
	GetByID(ctx context.Context, id uuid.UUID) (*TransferCandidate, error)

	// Confirm persists the confirmed status and flags both legs as transfers atomically
	Confirm(ctx context.Context, candidate *TransferCandidate) error

	// UpdateStatus persists the candidate's status
	UpdateStatus(ctx context.Context, candidate *TransferCandidate) error
}

// RecurringPatternRepository defines the interface for recurring pattern persistence operations
type RecurringPatternRepository interface {
	// ListByAccount retrieves an account's patterns ordered by payee.
	// Inactive patterns are included only when includeInactive is true.
	ListByAccount(ctx context.Context, accountID uuid.UUID, includeInactive bool) ([]*RecurringPattern, error)

	// GetByID retrieves a pattern, wrapping ErrNotFound if absent
	GetByID(ctx context.Context, id uuid.UUID) (*RecurringPattern, error)

	// ApplyMerge persists a detection run atomically
	ApplyMerge(ctx context.Context, merge *RecurringMerge) error

	// UpdateFlags persists is_active and user_confirmed
	UpdateFlags(ctx context.Context, pattern *RecurringPattern) error
}

// CsvProfileRepository defines the interface for CSV profile persistence operations
type CsvProfileRepository interface {
	// Create inserts a profile; a name collision wraps ErrDuplicate
	Create(ctx context.Context, profile *CsvProfile) error

	// GetByName retrieves a profile, wrapping ErrNotFound if absent
	GetByName(ctx context.Context, name string) (*CsvProfile, error)

	List(ctx context.Context) ([]*CsvProfile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
