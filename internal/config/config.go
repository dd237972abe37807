package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Config holds process settings read from the environment.
type Config struct {
	DBConnStr  string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	GRPCAddr  string
	LogLevel  string
	LogFormat string

	ImportMaxErrors         int
	TransferWindowDays      int
	RecurringMinOccurrences int
	RecurringMinConfidence  decimal.Decimal

	// DetectionSchedule is a cron spec; empty disables scheduled detection.
	DetectionSchedule string
}

// Load reads an optional .env file and then the process environment.
// A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("failed to load .env file")
	}
	return ProcessEnvironmentVariables(os.Getenv)
}

// ProcessEnvironmentVariables fills defaults and overrides them with every
// non-empty variable returned by getenv.
func ProcessEnvironmentVariables(getenv func(string) string) (*Config, error) {
	env := Config{
		DBHost:                  "localhost",
		DBPort:                  "5432",
		DBUser:                  "postgres",
		DBPassword:              "postgres",
		DBName:                  "finances",
		GRPCAddr:                ":8080",
		LogLevel:                "info",
		LogFormat:               "json",
		ImportMaxErrors:         50,
		TransferWindowDays:      3,
		RecurringMinOccurrences: 3,
		RecurringMinConfidence:  decimal.RequireFromString("0.6"),
	}

	setString(getenv, "DB_CONN_STR", &env.DBConnStr)
	setString(getenv, "DB_HOST", &env.DBHost)
	setString(getenv, "DB_PORT", &env.DBPort)
	setString(getenv, "DB_USER", &env.DBUser)
	setString(getenv, "DB_PASSWORD", &env.DBPassword)
	setString(getenv, "DB_NAME", &env.DBName)
	setString(getenv, "GRPC_ADDR", &env.GRPCAddr)
	setString(getenv, "LOG_LEVEL", &env.LogLevel)
	setString(getenv, "LOG_FORMAT", &env.LogFormat)
	setString(getenv, "DETECTION_SCHEDULE", &env.DetectionSchedule)

	for key, dst := range map[string]*int{
		"IMPORT_MAX_ERRORS":         &env.ImportMaxErrors,
		"TRANSFER_WINDOW_DAYS":      &env.TransferWindowDays,
		"RECURRING_MIN_OCCURRENCES": &env.RecurringMinOccurrences,
	} {
		if err := setPositiveInt(getenv, key, dst); err != nil {
			return nil, err
		}
	}

	if v := getenv("RECURRING_MIN_CONFIDENCE"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("RECURRING_MIN_CONFIDENCE must be a decimal between 0 and 1, got %q", v)
		}
		env.RecurringMinConfidence = d
	}

	return &env, nil
}

// DatabaseURL returns DB_CONN_STR if set, else a DSN built from the DB_* parts.
func (c *Config) DatabaseURL() string {
	if c.DBConnStr != "" {
		return c.DBConnStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func setString(getenv func(string) string, key string, dst *string) {
	if v := getenv(key); len(v) != 0 {
		*dst = v
	}
}

func setPositiveInt(getenv func(string) string, key string, dst *int) error {
	v := getenv(key)
	if len(v) == 0 {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	*dst = n
	return nil
}
