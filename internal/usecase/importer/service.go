// Package importer runs bank exports through normalization, fingerprinting
// and rule matching into the ledger.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gnuhannes/my-private-finances/internal/domain"
	"github.com/gnuhannes/my-private-finances/internal/usecase/hasher"
	"github.com/gnuhannes/my-private-finances/internal/usecase/normalizer"
	"github.com/gnuhannes/my-private-finances/internal/usecase/rules"
)

// Table is one page-level table of text cells, row-major.
type Table [][]string

// TableExtractor pulls tabular text out of a statement document.
type TableExtractor interface {
	Extract(ctx context.Context, content []byte) ([]Table, error)
}

// ImportService handles bank export imports
type ImportService struct {
	AccountRepo     domain.AccountRepository
	TransactionRepo domain.TransactionRepository
	RuleRepo        domain.RuleRepository
	ProfileRepo     domain.CsvProfileRepository
	Extractor       TableExtractor
	Logger          logrus.FieldLogger
	MaxErrors       int
}

// NewImportService creates a new ImportService instance
func NewImportService(
	accountRepo domain.AccountRepository,
	transactionRepo domain.TransactionRepository,
	ruleRepo domain.RuleRepository,
	profileRepo domain.CsvProfileRepository,
	extractor TableExtractor,
	logger logrus.FieldLogger,
) *ImportService {
	return &ImportService{
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		RuleRepo:        ruleRepo,
		ProfileRepo:     profileRepo,
		Extractor:       extractor,
		Logger:          logger,
		MaxErrors:       DefaultMaxErrors,
	}
}

// batch carries the per-call state shared by every row of one import.
type batch struct {
	accountID uuid.UUID
	source    string
	rules     []*domain.CategorizationRule
	result    *Result
	log       logrus.FieldLogger
}

// begin validates the account and loads the rule list. Any error here is
// fatal and no row is processed.
func (s *ImportService) begin(ctx context.Context, accountID uuid.UUID, source string, maxErrors int) (*batch, error) {
	if _, err := s.AccountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	ruleList, err := s.RuleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categorization rules: %w", err)
	}

	if maxErrors <= 0 {
		maxErrors = s.MaxErrors
	}
	if maxErrors <= 0 {
		maxErrors = DefaultMaxErrors
	}

	return &batch{
		accountID: accountID,
		source:    source,
		rules:     ruleList,
		result:    newResult(maxErrors),
		log: s.Logger.WithFields(logrus.Fields{
			"account_id": accountID,
			"source":     source,
		}),
	}, nil
}

func (b *batch) finish(started time.Time) *Result {
	b.log.WithFields(logrus.Fields{
		"total_rows":  b.result.TotalRows,
		"created":     b.result.Created,
		"duplicates":  b.result.Duplicates,
		"failed":      b.result.Failed,
		"duration_ms": time.Since(started).Milliseconds(),
	}).Info("import completed")
	return b.result
}

// insert fingerprints a normalized record, categorizes it and writes it.
// A unique violation counts as a duplicate; every other error is row-scoped.
func (s *ImportService) insert(ctx context.Context, b *batch, index int, rec *normalizer.Record, externalID *string) {
	amount := rec.Amount.Round(2)

	tx := &domain.Transaction{
		ID:           uuid.New(),
		AccountID:    b.accountID,
		BookingDate:  domain.Date(rec.BookingDate),
		Amount:       amount,
		Currency:     rec.Currency,
		Payee:        rec.Payee,
		Purpose:      rec.Purpose,
		ExternalID:   externalID,
		ImportSource: b.source,
	}
	tx.ImportHash = hasher.ComputeImportHash(hasher.Input{
		AccountID:    tx.AccountID,
		BookingDate:  tx.BookingDate,
		Amount:       tx.Amount,
		Currency:     tx.Currency,
		Payee:        tx.Payee,
		Purpose:      tx.Purpose,
		ExternalID:   tx.ExternalID,
		ImportSource: tx.ImportSource,
	})

	if err := tx.Validate(); err != nil {
		b.result.failf("row %d: %v", index, err)
		return
	}

	if len(b.rules) > 0 {
		tx.CategoryID = rules.Match(tx, b.rules)
	}

	err := s.TransactionRepo.Create(ctx, tx)
	switch {
	case err == nil:
		b.result.Created++
	case errors.Is(err, domain.ErrDuplicate):
		b.result.Duplicates++
		b.log.WithField("row", index).Debug("duplicate row skipped")
	default:
		b.log.WithError(err).WithField("row", index).Warn("failed to insert row")
		b.result.failf("row %d: %v", index, err)
	}
}

func (b *batch) rowFailed(err error, index int) {
	b.log.WithError(err).WithField("row", index).Warn("row rejected")
	b.result.fail(err)
}

func blank(cells []string) bool {
	for _, c := range cells {
		if trimSpace(c) != "" {
			return false
		}
	}
	return true
}
