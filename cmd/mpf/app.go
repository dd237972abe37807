package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/gnuhannes/my-private-finances/internal/app"
	"github.com/gnuhannes/my-private-finances/internal/config"
	"github.com/gnuhannes/my-private-finances/internal/logging"
)

// openApp loads the configuration and opens the application. Errors are
// reported on stderr.
func openApp(ctx context.Context) (*app.App, bool) {
	cfg, logger, ok := loadConfig()
	if !ok {
		return nil, false
	}
	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return nil, false
	}
	return a, true
}

func loadConfig() (*config.Config, *logrus.Logger, bool) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return nil, nil, false
	}
	logger := logging.SetupLogging(cfg.LogLevel, cfg.LogFormat)
	logger.SetOutput(os.Stderr)
	return cfg, logger, true
}
