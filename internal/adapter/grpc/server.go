// Package grpc exposes the finance use cases as the mpf.v1.FinanceService
// gRPC service. Messages are google.protobuf.Struct values; decimals, ids
// and dates travel as strings.
package grpc

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gnuhannes/my-private-finances/internal/domain"
	"github.com/gnuhannes/my-private-finances/internal/usecase/importer"
	"github.com/gnuhannes/my-private-finances/internal/usecase/profiles"
	"github.com/gnuhannes/my-private-finances/internal/usecase/recurring"
	"github.com/gnuhannes/my-private-finances/internal/usecase/rules"
)

// Importer ingests bank exports.
type Importer interface {
	ImportCSV(ctx context.Context, input importer.CSVInput) (*importer.Result, error)
	ImportPDF(ctx context.Context, input importer.PDFInput) (*importer.Result, error)
}

// TransferReviewer detects and reviews transfer candidates.
type TransferReviewer interface {
	Detect(ctx context.Context, windowDays int) ([]*domain.TransferCandidate, error)
	List(ctx context.Context, status domain.TransferStatus) ([]*domain.TransferCandidate, error)
	Confirm(ctx context.Context, id uuid.UUID) (*domain.TransferCandidate, error)
	Dismiss(ctx context.Context, id uuid.UUID) (*domain.TransferCandidate, error)
}

// RecurringManager detects and reviews recurring patterns.
type RecurringManager interface {
	Detect(ctx context.Context, accountID uuid.UUID) ([]*domain.RecurringPattern, error)
	List(ctx context.Context, accountID uuid.UUID, includeInactive bool) ([]*domain.RecurringPattern, error)
	Update(ctx context.Context, id uuid.UUID, input recurring.UpdatePatternInput) (*domain.RecurringPattern, error)
	Summary(ctx context.Context, accountID uuid.UUID) (*recurring.Summary, error)
}

// RuleManager maintains and applies categorization rules.
type RuleManager interface {
	List(ctx context.Context) ([]*domain.CategorizationRule, error)
	Create(ctx context.Context, input rules.CreateRuleInput) (*domain.CategorizationRule, error)
	Update(ctx context.Context, id uuid.UUID, input rules.UpdateRuleInput) (*domain.CategorizationRule, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ApplyToUncategorized(ctx context.Context) (*rules.ApplyResult, error)
	Reorder(ctx context.Context, ruleIDs []uuid.UUID) ([]*domain.CategorizationRule, error)
}

// ProfileManager maintains named CSV profiles.
type ProfileManager interface {
	Create(ctx context.Context, input profiles.CreateProfileInput) (*domain.CsvProfile, error)
	Get(ctx context.Context, name string) (*domain.CsvProfile, error)
	List(ctx context.Context) ([]*domain.CsvProfile, error)
	Delete(ctx context.Context, name string) error
}

// Server implements FinanceServiceServer
type Server struct {
	Importer  Importer
	Transfers TransferReviewer
	Recurring RecurringManager
	Rules     RuleManager
	Profiles  ProfileManager
}

var _ FinanceServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(
	imp Importer,
	transfers TransferReviewer,
	recurringManager RecurringManager,
	ruleManager RuleManager,
	profileManager ProfileManager,
) *Server {
	return &Server{
		Importer:  imp,
		Transfers: transfers,
		Recurring: recurringManager,
		Rules:     ruleManager,
		Profiles:  profileManager,
	}
}

// ImportCSV handles the ImportCSV RPC
func (s *Server) ImportCSV(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	accountID, err := req.id("account_id")
	if err != nil {
		return nil, err
	}
	content, err := req.content()
	if err != nil {
		return nil, err
	}
	overrides, err := req.localeOverride()
	if err != nil {
		return nil, err
	}

	res, err := s.Importer.ImportCSV(ctx, importer.CSVInput{
		AccountID: accountID,
		Content:   bytes.NewReader(content),
		Profile:   req.str("profile"),
		Overrides: overrides,
		MaxErrors: req.number("max_errors"),
	})
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(importResult(res))
}

// ImportPDF handles the ImportPDF RPC
func (s *Server) ImportPDF(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	accountID, err := req.id("account_id")
	if err != nil {
		return nil, err
	}
	content, err := req.content()
	if err != nil {
		return nil, err
	}

	res, err := s.Importer.ImportPDF(ctx, importer.PDFInput{
		AccountID: accountID,
		Content:   content,
		MaxErrors: req.number("max_errors"),
	})
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(importResult(res))
}

// DetectTransfers handles the DetectTransfers RPC
func (s *Server) DetectTransfers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	windowDays := req.number("window_days")
	if windowDays < 0 {
		return nil, fmt.Errorf("window_days must not be negative: %w", domain.ErrValidation)
	}

	created, err := s.Transfers.Detect(ctx, windowDays)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]interface{}{
		"candidates": transferCandidates(created),
	})
}

// ListTransfers handles the ListTransfers RPC
func (s *Server) ListTransfers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	candidates, err := s.Transfers.List(ctx, domain.TransferStatus(req.str("status")))
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]interface{}{
		"candidates": transferCandidates(candidates),
	})
}

// ConfirmTransfer handles the ConfirmTransfer RPC
func (s *Server) ConfirmTransfer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := newRequest(in).id("id")
	if err != nil {
		return nil, err
	}
	c, err := s.Transfers.Confirm(ctx, id)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(transferCandidate(c))
}

// DismissTransfer handles the DismissTransfer RPC
func (s *Server) DismissTransfer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := newRequest(in).id("id")
	if err != nil {
		return nil, err
	}
	c, err := s.Transfers.Dismiss(ctx, id)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(transferCandidate(c))
}

// DetectRecurring handles the DetectRecurring RPC
func (s *Server) DetectRecurring(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	accountID, err := newRequest(in).id("account_id")
	if err != nil {
		return nil, err
	}
	patterns, err := s.Recurring.Detect(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]interface{}{
		"patterns": recurringPatterns(patterns),
	})
}

// ListRecurring handles the ListRecurring RPC
func (s *Server) ListRecurring(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	accountID, err := req.id("account_id")
	if err != nil {
		return nil, err
	}
	patterns, err := s.Recurring.List(ctx, accountID, req.fields["include_inactive"].GetBoolValue())
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]interface{}{
		"patterns": recurringPatterns(patterns),
	})
}

// UpdateRecurring handles the UpdateRecurring RPC
func (s *Server) UpdateRecurring(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	id, err := req.id("id")
	if err != nil {
		return nil, err
	}
	p, err := s.Recurring.Update(ctx, id, recurring.UpdatePatternInput{
		IsActive:      req.boolPtr("is_active"),
		UserConfirmed: req.boolPtr("user_confirmed"),
	})
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(recurringPattern(p))
}

// RecurringSummary handles the RecurringSummary RPC
func (s *Server) RecurringSummary(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	accountID, err := newRequest(in).id("account_id")
	if err != nil {
		return nil, err
	}
	summary, err := s.Recurring.Summary(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(recurringSummary(summary))
}

// ListRules handles the ListRules RPC
func (s *Server) ListRules(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.Rules.List(ctx)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]interface{}{"rules": categorizationRules(list)})
}

// CreateRule handles the CreateRule RPC
func (s *Server) CreateRule(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	categoryID, err := req.id("category_id")
	if err != nil {
		return nil, err
	}
	rule, err := s.Rules.Create(ctx, rules.CreateRuleInput{
		Field:      domain.RuleField(req.str("field")),
		Operator:   domain.RuleOperator(req.str("operator")),
		Value:      req.str("value"),
		CategoryID: categoryID,
	})
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(categorizationRule(rule))
}

// UpdateRule handles the UpdateRule RPC. Absent fields are left unchanged.
func (s *Server) UpdateRule(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	id, err := req.id("id")
	if err != nil {
		return nil, err
	}

	var input rules.UpdateRuleInput
	if req.has("field") {
		f := domain.RuleField(req.str("field"))
		input.Field = &f
	}
	if req.has("operator") {
		op := domain.RuleOperator(req.str("operator"))
		input.Operator = &op
	}
	input.Value = req.strPtr("value")
	if req.has("category_id") {
		categoryID, err := req.id("category_id")
		if err != nil {
			return nil, err
		}
		input.CategoryID = &categoryID
	}

	rule, err := s.Rules.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(categorizationRule(rule))
}

// DeleteRule handles the DeleteRule RPC
func (s *Server) DeleteRule(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := newRequest(in).id("id")
	if err != nil {
		return nil, err
	}
	if err := s.Rules.Delete(ctx, id); err != nil {
		return nil, err
	}
	return &structpb.Struct{}, nil
}

// ApplyRules handles the ApplyRules RPC
func (s *Server) ApplyRules(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.Rules.ApplyToUncategorized(ctx)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]interface{}{
		"scanned":     res.Scanned,
		"categorized": res.Categorized,
	})
}

// ReorderRules handles the ReorderRules RPC
func (s *Server) ReorderRules(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ids, err := newRequest(in).ids("rule_ids")
	if err != nil {
		return nil, err
	}
	reordered, err := s.Rules.Reorder(ctx, ids)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]interface{}{"rules": categorizationRules(reordered)})
}

// ListProfiles handles the ListProfiles RPC
func (s *Server) ListProfiles(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.Profiles.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, 0, len(list))
	for _, p := range list {
		out = append(out, csvProfile(p))
	}
	return structpb.NewStruct(map[string]interface{}{"profiles": out})
}

// GetProfile handles the GetProfile RPC
func (s *Server) GetProfile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	name, err := newRequest(in).name()
	if err != nil {
		return nil, err
	}
	p, err := s.Profiles.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(csvProfile(p))
}

// CreateProfile handles the CreateProfile RPC. Locale fields that are not
// given take the default locale's values.
func (s *Server) CreateProfile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(in)
	overrides, err := req.localeOverride()
	if err != nil {
		return nil, err
	}
	columnMap, err := req.columnMap()
	if err != nil {
		return nil, err
	}
	locale := overrides.Apply(domain.DefaultLocale())
	locale.ColumnMap = columnMap

	p, err := s.Profiles.Create(ctx, profiles.CreateProfileInput{
		Name:   req.str("name"),
		Locale: locale,
	})
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(csvProfile(p))
}

// DeleteProfile handles the DeleteProfile RPC
func (s *Server) DeleteProfile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	name, err := newRequest(in).name()
	if err != nil {
		return nil, err
	}
	if err := s.Profiles.Delete(ctx, name); err != nil {
		return nil, err
	}
	return &structpb.Struct{}, nil
}
