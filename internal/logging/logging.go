// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"elite-rental-funnel/internal/config"
)

// Setup applies the configured level and formatter to the standard logrus logger
func Setup(cfg config.LogConfig) {
	Configure(logrus.StandardLogger(), cfg, os.Stdout)
}

// Configure applies level, formatter and output to the given logger
func Configure(logger *logrus.Logger, cfg config.LogConfig, out io.Writer) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetOutput(out)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
		return
	}
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// Component returns an entry scoped to a named component
func Component(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}
