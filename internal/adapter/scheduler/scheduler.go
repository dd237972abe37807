// Package scheduler runs the ledger detectors periodically.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/gnuhannes/my-private-finances/internal/domain"
	"github.com/gnuhannes/my-private-finances/internal/logging"
)

// TransferDetector proposes transfer candidates across all accounts.
type TransferDetector interface {
	Detect(ctx context.Context, windowDays int) ([]*domain.TransferCandidate, error)
}

// RecurringDetector refreshes the recurring patterns of one account.
type RecurringDetector interface {
	Detect(ctx context.Context, accountID uuid.UUID) ([]*domain.RecurringPattern, error)
}

// AccountLister lists the accounts to scan.
type AccountLister interface {
	List(ctx context.Context) ([]*domain.Account, error)
}

// DetectionJob runs transfer detection once and recurring detection for
// every account. A failing account does not stop the others.
type DetectionJob struct {
	Transfers TransferDetector
	Recurring RecurringDetector
	Accounts  AccountLister
	Logger    logrus.FieldLogger
}

// NewDetectionJob creates a new DetectionJob instance
func NewDetectionJob(
	transfers TransferDetector,
	recurringDetector RecurringDetector,
	accounts AccountLister,
	logger logrus.FieldLogger,
) *DetectionJob {
	return &DetectionJob{
		Transfers: transfers,
		Recurring: recurringDetector,
		Accounts:  accounts,
		Logger:    logger,
	}
}

// Run executes one detection pass.
func (j *DetectionJob) Run(ctx context.Context) error {
	logData := logging.NewLogData(j.Logger)
	endTimer := logData.AddTiming("duration_ms")

	var errs []error
	candidates, err := j.Transfers.Detect(ctx, 0)
	if err != nil {
		errs = append(errs, fmt.Errorf("transfer detection: %w", err))
	}
	logData.AddData("transfer_candidates", len(candidates))

	accounts, err := j.Accounts.List(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to list accounts: %w", err))
	}

	patterns := 0
	for _, account := range accounts {
		found, err := j.Recurring.Detect(ctx, account.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("recurring detection for account %s: %w", account.ID, err))
			continue
		}
		patterns += len(found)
	}
	logData.AddData("accounts", len(accounts))
	logData.AddData("recurring_patterns", patterns)
	endTimer()

	if err := errors.Join(errs...); err != nil {
		logData.Log().WithError(err).Error("scheduled detection finished with errors")
		return err
	}
	logData.Log().Info("scheduled detection completed")
	return nil
}

// Start schedules job on the cron spec and starts the scheduler. The caller
// stops it with Stop on shutdown.
func Start(spec string, job *DetectionJob) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		// errors are logged by Run
		_ = job.Run(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("invalid detection schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
