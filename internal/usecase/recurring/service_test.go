package recurring

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

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
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) AssignCategories(ctx context.Context, assignments map[uuid.UUID]uuid.UUID) error {
	return m.Called(ctx, assignments).Error(0)
}

// MockPatternRepository is a mock implementation of RecurringPatternRepository for testing
type MockPatternRepository struct {
	mock.Mock
}

func (m *MockPatternRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, includeInactive bool) ([]*domain.RecurringPattern, error) {
	args := m.Called(ctx, accountID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RecurringPattern), args.Error(1)
}

func (m *MockPatternRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurringPattern, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringPattern), args.Error(1)
}

func (m *MockPatternRepository) ApplyMerge(ctx context.Context, merge *domain.RecurringMerge) error {
	return m.Called(ctx, merge).Error(0)
}

func (m *MockPatternRepository) UpdateFlags(ctx context.Context, pattern *domain.RecurringPattern) error {
	return m.Called(ctx, pattern).Error(0)
}

type fixture struct {
	service  *RecurringService
	accounts *MockAccountRepository
	txs      *MockTransactionRepository
	patterns *MockPatternRepository
	account  uuid.UUID
}

func newFixture() *fixture {
	logger, _ := test.NewNullLogger()
	f := &fixture{
		accounts: new(MockAccountRepository),
		txs:      new(MockTransactionRepository),
		patterns: new(MockPatternRepository),
		account:  uuid.New(),
	}
	f.service = NewRecurringService(f.accounts, f.txs, f.patterns, logger, DefaultConfig())
	f.accounts.On("GetByID", mock.Anything, f.account).Return(&domain.Account{ID: f.account}, nil)
	return f
}

func TestService_Detect(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.txs.On("List", ctx, domain.TransactionFilter{
		AccountID:    &f.account,
		Sign:         domain.SignNegative,
		RequirePayee: true,
	}).Return([]*domain.Transaction{
		expense("Rent", "2024-01-01", "-800"),
		expense("Rent", "2024-02-01", "-800"),
		expense("Rent", "2024-03-01", "-800"),
	}, nil)
	f.patterns.On("ListByAccount", ctx, f.account, true).Return([]*domain.RecurringPattern{}, nil)
	f.patterns.On("ApplyMerge", ctx, mock.AnythingOfType("*domain.RecurringMerge")).Return(nil)

	patterns, err := f.service.Detect(ctx, f.account)

	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, "rent", patterns[0].Payee)
	assert.Equal(t, domain.FrequencyMonthly, patterns[0].Frequency)
	assert.Equal(t, 3, patterns[0].OccurrenceCount)
	f.patterns.AssertExpectations(t)
}

func TestService_DetectStaleSuppression(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	stale := &domain.RecurringPattern{ID: uuid.New(), AccountID: f.account, Payee: "gym", Frequency: domain.FrequencyMonthly, IsActive: true}

	f.txs.On("List", ctx, mock.Anything).Return([]*domain.Transaction{}, nil)
	f.patterns.On("ListByAccount", ctx, f.account, true).Return([]*domain.RecurringPattern{stale}, nil)
	f.patterns.On("ApplyMerge", ctx, mock.MatchedBy(func(m *domain.RecurringMerge) bool {
		return len(m.Deactivated) == 1 && m.Deactivated[0].ID == stale.ID
	})).Return(nil)

	patterns, err := f.service.Detect(ctx, f.account)

	require.NoError(t, err)
	assert.Empty(t, patterns)
	assert.False(t, stale.IsActive)
	f.patterns.AssertExpectations(t)
}

func TestService_DetectUnknownAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	other := uuid.New()
	f.accounts.On("GetByID", ctx, other).Return(nil, domain.NotFoundError("account", other))

	_, err := f.service.Detect(ctx, other)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.txs.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	pattern := &domain.RecurringPattern{ID: uuid.New(), IsActive: true}
	confirmed := true
	inactive := false

	f.patterns.On("GetByID", ctx, pattern.ID).Return(pattern, nil)
	f.patterns.On("UpdateFlags", ctx, pattern).Return(nil)

	got, err := f.service.Update(ctx, pattern.ID, UpdatePatternInput{IsActive: &inactive, UserConfirmed: &confirmed})

	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.True(t, got.UserConfirmed)
}

func TestSummarize(t *testing.T) {
	account := uuid.New()
	pattern := func(freq domain.Frequency, amount string, active bool) *domain.RecurringPattern {
		return &domain.RecurringPattern{Frequency: freq, TypicalAmount: decimal.RequireFromString(amount), IsActive: active}
	}

	summary := Summarize(account, []*domain.RecurringPattern{
		pattern(domain.FrequencyYearly, "120.00", true),
		pattern(domain.FrequencyMonthly, "12.99", true),
		pattern(domain.FrequencyMonthly, "800.00", true),
		pattern(domain.FrequencyWeekly, "10.00", true),
		pattern(domain.FrequencyQuarterly, "300.00", false),
	})

	assert.Equal(t, 4, summary.PatternCount)
	require.Len(t, summary.ByFrequency, 3)
	assert.Equal(t, domain.FrequencyWeekly, summary.ByFrequency[0].Frequency)
	assert.Equal(t, domain.FrequencyMonthly, summary.ByFrequency[1].Frequency)
	assert.Equal(t, 2, summary.ByFrequency[1].Count)
	assert.Equal(t, "812.99", summary.ByFrequency[1].Total.StringFixed(2))
	assert.Equal(t, domain.FrequencyYearly, summary.ByFrequency[2].Frequency)
	// 10*4.33 + 812.99 + 120*0.083 = 43.30 + 812.99 + 9.96
	assert.Equal(t, "866.25", summary.TotalMonthlyRecurring.StringFixed(2))
}
