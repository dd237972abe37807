// Package transfer pairs opposite legs of internal transfers across accounts.
package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// TransferService handles transfer candidate detection and review
type TransferService struct {
	TransactionRepo domain.TransactionRepository
	CandidateRepo   domain.TransferCandidateRepository
	Logger          logrus.FieldLogger
	Config          Config
	Now             func() time.Time
}

// NewTransferService creates a new TransferService instance
func NewTransferService(
	transactionRepo domain.TransactionRepository,
	candidateRepo domain.TransferCandidateRepository,
	logger logrus.FieldLogger,
	cfg Config,
) *TransferService {
	return &TransferService{
		TransactionRepo: transactionRepo,
		CandidateRepo:   candidateRepo,
		Logger:          logger,
		Config:          cfg,
		Now:             time.Now,
	}
}

// Detect scans the whole ledger and stores new pending candidates.
// windowDays overrides the configured window when positive.
func (s *TransferService) Detect(ctx context.Context, windowDays int) ([]*domain.TransferCandidate, error) {
	cfg := s.Config
	if windowDays > 0 {
		cfg.WindowDays = windowDays
	}

	txs, err := s.TransactionRepo.List(ctx, domain.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	existing, err := s.CandidateRepo.ExistingPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing transfer pairs: %w", err)
	}

	candidates := Detect(txs, existing, cfg, s.Now().UTC())
	if len(candidates) > 0 {
		candidates, err = s.CandidateRepo.CreateBatch(ctx, candidates)
		if err != nil {
			return nil, err
		}
	}

	s.Logger.WithFields(logrus.Fields{
		"transactions": len(txs),
		"window_days":  cfg.WindowDays,
		"created":      len(candidates),
	}).Info("transfer detection completed")

	if candidates == nil {
		candidates = []*domain.TransferCandidate{}
	}
	return candidates, nil
}

// List returns candidates with the given status, pending when empty.
func (s *TransferService) List(ctx context.Context, status domain.TransferStatus) ([]*domain.TransferCandidate, error) {
	if status == "" {
		status = domain.TransferStatusPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown transfer status %q", domain.ErrValidation, status)
	}
	return s.CandidateRepo.List(ctx, status)
}

// Confirm marks a pending candidate confirmed and flags both legs as transfers.
func (s *TransferService) Confirm(ctx context.Context, id uuid.UUID) (*domain.TransferCandidate, error) {
	candidate, err := s.CandidateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := candidate.Confirm(); err != nil {
		return nil, err
	}
	if err := s.CandidateRepo.Confirm(ctx, candidate); err != nil {
		return nil, err
	}

	s.Logger.WithField("candidate_id", id).Info("transfer confirmed")
	return candidate, nil
}

// Dismiss permanently suppresses a pending candidate.
func (s *TransferService) Dismiss(ctx context.Context, id uuid.UUID) (*domain.TransferCandidate, error) {
	candidate, err := s.CandidateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := candidate.Dismiss(); err != nil {
		return nil, err
	}
	if err := s.CandidateRepo.UpdateStatus(ctx, candidate); err != nil {
		return nil, err
	}

	s.Logger.WithField("candidate_id", id).Info("transfer dismissed")
	return candidate, nil
}
