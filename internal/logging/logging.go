package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// SetupLogging builds the process logger. format "text" selects a human
// readable formatter; anything else logs JSON with the level under "loglevel".
// An unknown level falls back to info.
func SetupLogging(level, format string) *logrus.Logger {
	return newLogger(os.Stdout, level, format)
}

func newLogger(out io.Writer, level, format string) *logrus.Logger {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}

	var formatter logrus.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyLevel: "loglevel",
		},
	}
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		formatter = &logrus.TextFormatter{FullTimestamp: true}
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(formatter)
	logger.SetLevel(lvl)
	return logger
}
