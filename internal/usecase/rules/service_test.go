package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

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
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) Update(ctx context.Context, rule *domain.CategorizationRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRuleRepository) ApplyPositions(ctx context.Context, phases ...[]domain.RulePosition) error {
	args := m.Called(ctx, phases)
	return args.Error(0)
}

// MockCategoryRepository is a mock implementation of CategoryRepository for testing
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
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

func newTestService() (*RuleService, *MockRuleRepository, *MockCategoryRepository, *MockTransactionRepository) {
	logger, _ := test.NewNullLogger()
	ruleRepo := new(MockRuleRepository)
	categoryRepo := new(MockCategoryRepository)
	txRepo := new(MockTransactionRepository)
	return NewRuleService(ruleRepo, categoryRepo, txRepo, logger), ruleRepo, categoryRepo, txRepo
}

func TestCreate_AppendsAfterMaxPosition(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, categoryRepo, _ := newTestService()
	categoryID := uuid.New()

	categoryRepo.On("GetByID", ctx, categoryID).Return(&domain.Category{ID: categoryID, Name: "Groceries"}, nil)
	ruleRepo.On("MaxPosition", ctx).Return(4, nil)
	ruleRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.CategorizationRule) bool {
		return r.Position == 5 && r.Value == "rewe" && r.CategoryID == categoryID
	})).Return(nil)

	rule, err := service.Create(ctx, CreateRuleInput{
		Field:      domain.RuleFieldPayee,
		Operator:   domain.OperatorContains,
		Value:      "rewe",
		CategoryID: categoryID,
	})

	require.NoError(t, err)
	assert.Equal(t, 5, rule.Position)
	ruleRepo.AssertExpectations(t)
	categoryRepo.AssertExpectations(t)
}

func TestCreate_UnknownCategory(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, categoryRepo, _ := newTestService()
	categoryID := uuid.New()

	categoryRepo.On("GetByID", ctx, categoryID).Return(nil, domain.NotFoundError("category", categoryID))

	_, err := service.Create(ctx, CreateRuleInput{
		Field:      domain.RuleFieldPayee,
		Operator:   domain.OperatorContains,
		Value:      "rewe",
		CategoryID: categoryID,
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	ruleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_InvalidInput(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, categoryRepo, _ := newTestService()

	_, err := service.Create(ctx, CreateRuleInput{
		Field:      domain.RuleFieldPayee,
		Operator:   domain.OperatorContains,
		Value:      "",
		CategoryID: uuid.New(),
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	categoryRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	ruleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdate_BlankValueRejected(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, _, _ := newTestService()
	rule := &domain.CategorizationRule{
		ID:         uuid.New(),
		Position:   1,
		Field:      domain.RuleFieldPurpose,
		Operator:   domain.OperatorContains,
		Value:      "miete",
		CategoryID: uuid.New(),
	}
	blank := "   "

	ruleRepo.On("GetByID", ctx, rule.ID).Return(rule, nil)

	_, err := service.Update(ctx, rule.ID, UpdateRuleInput{Value: &blank})

	assert.ErrorIs(t, err, domain.ErrValidation)
	ruleRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdate_PartialFields(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, _, _ := newTestService()
	rule := &domain.CategorizationRule{
		ID:         uuid.New(),
		Position:   2,
		Field:      domain.RuleFieldPayee,
		Operator:   domain.OperatorContains,
		Value:      "rewe",
		CategoryID: uuid.New(),
	}
	newValue := "edeka"

	ruleRepo.On("GetByID", ctx, rule.ID).Return(rule, nil)
	ruleRepo.On("Update", ctx, rule).Return(nil)

	updated, err := service.Update(ctx, rule.ID, UpdateRuleInput{Value: &newValue})

	require.NoError(t, err)
	assert.Equal(t, "edeka", updated.Value)
	assert.Equal(t, domain.OperatorContains, updated.Operator)
	assert.Equal(t, 2, updated.Position)
	ruleRepo.AssertExpectations(t)
}

func TestPlanReorder(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	staged, final := PlanReorder([]uuid.UUID{c, a, b})

	assert.Equal(t, []domain.RulePosition{
		{RuleID: c, Position: -1},
		{RuleID: a, Position: -2},
		{RuleID: b, Position: -3},
	}, staged)
	assert.Equal(t, []domain.RulePosition{
		{RuleID: c, Position: 1},
		{RuleID: a, Position: 2},
		{RuleID: b, Position: 3},
	}, final)
}

func TestReorder(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	existing := func() []*domain.CategorizationRule {
		return []*domain.CategorizationRule{
			{ID: a, Position: 1},
			{ID: b, Position: 2},
			{ID: c, Position: 7},
		}
	}

	tests := []struct {
		name    string
		ids     []uuid.UUID
		wantErr error
	}{
		{"valid permutation", []uuid.UUID{c, a, b}, nil},
		{"missing rule", []uuid.UUID{c, a}, domain.ErrValidation},
		{"unknown rule", []uuid.UUID{c, a, uuid.New()}, domain.ErrValidation},
		{"duplicate rule", []uuid.UUID{c, a, a}, domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			service, ruleRepo, _, _ := newTestService()
			ruleRepo.On("List", ctx).Return(existing(), nil)
			ruleRepo.On("ApplyPositions", ctx, mock.Anything).Return(nil)

			ordered, err := service.Reorder(ctx, tt.ids)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				ruleRepo.AssertNotCalled(t, "ApplyPositions", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			require.Len(t, ordered, 3)
			for i, r := range ordered {
				assert.Equal(t, tt.ids[i], r.ID)
				assert.Equal(t, i+1, r.Position)
			}
			ruleRepo.AssertCalled(t, "ApplyPositions", ctx, mock.MatchedBy(func(phases [][]domain.RulePosition) bool {
				return len(phases) == 2 && phases[0][0].Position == -1 && phases[1][2].Position == 3
			}))
		})
	}
}

func TestApplyToUncategorized(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, _, txRepo := newTestService()
	groceries := uuid.New()
	fuel := uuid.New()

	ruleRepo.On("List", ctx).Return([]*domain.CategorizationRule{
		{Position: 1, Field: domain.RuleFieldPayee, Operator: domain.OperatorContains, Value: "rewe", CategoryID: groceries},
		{Position: 2, Field: domain.RuleFieldPayee, Operator: domain.OperatorStartsWith, Value: "shell", CategoryID: fuel},
	}, nil)

	rewe := &domain.Transaction{ID: uuid.New(), Payee: strPtr("REWE Supermarkt"), Amount: decimal.NewFromInt(-20)}
	shell := &domain.Transaction{ID: uuid.New(), Payee: strPtr("Shell Station"), Amount: decimal.NewFromInt(-60)}
	other := &domain.Transaction{ID: uuid.New(), Payee: strPtr("Amazon"), Amount: decimal.NewFromInt(-15)}
	txRepo.On("List", ctx, domain.TransactionFilter{Uncategorized: true}).
		Return([]*domain.Transaction{rewe, shell, other}, nil)
	txRepo.On("AssignCategories", ctx, map[uuid.UUID]uuid.UUID{
		rewe.ID:  groceries,
		shell.ID: fuel,
	}).Return(nil)

	result, err := service.ApplyToUncategorized(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Scanned)
	assert.Equal(t, 2, result.Categorized)
	txRepo.AssertExpectations(t)
}

func TestApplyToUncategorized_NoRules(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, _, txRepo := newTestService()
	ruleRepo.On("List", ctx).Return([]*domain.CategorizationRule{}, nil)

	result, err := service.ApplyToUncategorized(ctx)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Categorized)
	txRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestApplyToUncategorized_RepositoryError(t *testing.T) {
	ctx := context.Background()
	service, ruleRepo, _, txRepo := newTestService()
	ruleRepo.On("List", ctx).Return([]*domain.CategorizationRule{
		{Field: domain.RuleFieldPayee, Operator: domain.OperatorContains, Value: "x", CategoryID: uuid.New()},
	}, nil)
	txRepo.On("List", ctx, mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := service.ApplyToUncategorized(ctx)

	assert.EqualError(t, err, "connection reset")
}
