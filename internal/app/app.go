// Package app wires repositories and use cases for the server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gnuhannes/my-private-finances/internal/adapter/pdfextract"
	"github.com/gnuhannes/my-private-finances/internal/adapter/repository/postgres"
	"github.com/gnuhannes/my-private-finances/internal/config"
	"github.com/gnuhannes/my-private-finances/internal/domain"
	"github.com/gnuhannes/my-private-finances/internal/usecase/importer"
	"github.com/gnuhannes/my-private-finances/internal/usecase/profiles"
	"github.com/gnuhannes/my-private-finances/internal/usecase/recurring"
	"github.com/gnuhannes/my-private-finances/internal/usecase/rules"
	"github.com/gnuhannes/my-private-finances/internal/usecase/seeder"
	"github.com/gnuhannes/my-private-finances/internal/usecase/transfer"
)

// App holds the database handle and every service built on it.
type App struct {
	DB       *postgres.DB
	Accounts domain.AccountRepository

	Imports   *importer.ImportService
	Transfers *transfer.TransferService
	Recurring *recurring.RecurringService
	Rules     *rules.RuleService
	Profiles  *profiles.ProfileService
}

// Open connects to the database, applies migrations, seeds the built-in
// CSV profiles and builds the services.
func Open(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*App, error) {
	db, err := postgres.NewDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, err
	}

	if err := postgres.Migrate(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	a := New(db, cfg, logger)

	profileSeeder := seeder.NewProfileSeeder(postgres.NewCsvProfileRepository(db))
	if err := profileSeeder.Seed(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed csv profiles: %w", err)
	}
	logger.Info("CSV profiles seeded successfully")

	return a, nil
}

// New builds the repositories and services on an open database.
func New(db *postgres.DB, cfg *config.Config, logger logrus.FieldLogger) *App {
	accountRepo := postgres.NewAccountRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	ruleRepo := postgres.NewRuleRepository(db)
	candidateRepo := postgres.NewTransferCandidateRepository(db)
	patternRepo := postgres.NewRecurringPatternRepository(db)
	profileRepo := postgres.NewCsvProfileRepository(db)

	imports := importer.NewImportService(
		accountRepo,
		transactionRepo,
		ruleRepo,
		profileRepo,
		pdfextract.NewExtractor(importer.HeaderAnchor, logger.WithField("component", "pdfextract")),
		logger.WithField("component", "importer"),
	)
	imports.MaxErrors = cfg.ImportMaxErrors

	return &App{
		DB:        db,
		Accounts:  accountRepo,
		Imports:   imports,
		Transfers: transfer.NewTransferService(transactionRepo, candidateRepo, logger.WithField("component", "transfer"), TransferConfig(cfg)),
		Recurring: recurring.NewRecurringService(accountRepo, transactionRepo, patternRepo, logger.WithField("component", "recurring"), RecurringConfig(cfg)),
		Rules:     rules.NewRuleService(ruleRepo, categoryRepo, transactionRepo, logger.WithField("component", "rules")),
		Profiles:  profiles.NewProfileService(profileRepo, logger.WithField("component", "profiles")),
	}
}

// Close releases the database connection
func (a *App) Close() error {
	return a.DB.Close()
}

// TransferConfig applies the configured window to the default heuristics.
func TransferConfig(cfg *config.Config) transfer.Config {
	c := transfer.DefaultConfig()
	if cfg.TransferWindowDays > 0 {
		c.WindowDays = cfg.TransferWindowDays
	}
	return c
}

// RecurringConfig applies the configured thresholds to the default heuristics.
func RecurringConfig(cfg *config.Config) recurring.Config {
	c := recurring.DefaultConfig()
	if cfg.RecurringMinOccurrences > 0 {
		c.MinOccurrences = cfg.RecurringMinOccurrences
	}
	c.MinConfidence = cfg.RecurringMinConfidence
	return c
}
