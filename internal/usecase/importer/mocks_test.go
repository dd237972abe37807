package importer

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// MockAccountRepository is a mock implementation of AccountRepository for testing
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) AssignCategories(ctx context.Context, assignments map[uuid.UUID]uuid.UUID) error {
	args := m.Called(ctx, assignments)
	return args.Error(0)
}

// MockRuleRepository is a mock implementation of RuleRepository for testing
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) List(ctx context.Context) ([]*domain.CategorizationRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CategorizationRule), args.Error(1)
}

func (m *MockRuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CategorizationRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CategorizationRule), args.Error(1)
}

func (m *MockRuleRepository) MaxPosition(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRuleRepository) Create(ctx context.Context, rule *domain.CategorizationRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *MockRuleRepository) Update(ctx context.Context, rule *domain.CategorizationRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *MockRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRuleRepository) ApplyPositions(ctx context.Context, phases ...[]domain.RulePosition) error {
	return m.Called(ctx, phases).Error(0)
}

// MockCsvProfileRepository is a mock implementation of CsvProfileRepository for testing
type MockCsvProfileRepository struct {
	mock.Mock
}

func (m *MockCsvProfileRepository) Create(ctx context.Context, profile *domain.CsvProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockCsvProfileRepository) GetByName(ctx context.Context, name string) (*domain.CsvProfile, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CsvProfile), args.Error(1)
}

func (m *MockCsvProfileRepository) List(ctx context.Context) ([]*domain.CsvProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CsvProfile), args.Error(1)
}

func (m *MockCsvProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockTableExtractor is a mock implementation of TableExtractor for testing
type MockTableExtractor struct {
	mock.Mock
}

func (m *MockTableExtractor) Extract(ctx context.Context, content []byte) ([]Table, error) {
	args := m.Called(ctx, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Table), args.Error(1)
}

// ledger is an in-memory TransactionRepository enforcing (account, hash) uniqueness.
type ledger struct {
	rows map[string]*domain.Transaction
}

func newLedger() *ledger {
	return &ledger{rows: map[string]*domain.Transaction{}}
}

func (l *ledger) Create(_ context.Context, tx *domain.Transaction) error {
	key := tx.AccountID.String() + tx.ImportHash
	if _, ok := l.rows[key]; ok {
		return domain.ErrDuplicate
	}
	l.rows[key] = tx
	return nil
}

func (l *ledger) List(context.Context, domain.TransactionFilter) ([]*domain.Transaction, error) {
	out := make([]*domain.Transaction, 0, len(l.rows))
	for _, tx := range l.rows {
		out = append(out, tx)
	}
	return out, nil
}

func (l *ledger) AssignCategories(context.Context, map[uuid.UUID]uuid.UUID) error {
	return nil
}
