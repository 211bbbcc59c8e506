// Package atlaslog provides centralized structured logging for the engine's
// diagnostics: scheduler cycles, plugin readiness timeouts, shader compile
// failures, and device loss. It wraps logrus so every package logs with the
// same level/format conventions instead of reaching for fmt.Print*.
package atlaslog

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level is the minimum severity a logger will emit.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
	FatalLevel Level = "fatal"
)

// Format selects the output encoding.
type Format string

const (
	JSONFormat Format = "json"
	TextFormat Format = "text"
)

// Config controls logger construction.
type Config struct {
	Level       Level
	Format      Format
	AddCaller   bool
	EnableColor bool
}

// DefaultConfig returns the engine's default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:       InfoLevel,
		Format:      TextFormat,
		AddCaller:   false,
		EnableColor: true,
	}
}

// New creates a configured *logrus.Logger.
func New(cfg Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(parseLevel(cfg.Level))

	switch cfg.Format {
	case JSONFormat:
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FullTimestamp:   true,
			ForceColors:     cfg.EnableColor,
			DisableColors:   !cfg.EnableColor,
		})
	}

	logger.SetReportCaller(cfg.AddCaller)
	logger.SetOutput(os.Stdout)
	return logger
}

// NewFromEnv builds a logger from LOG_LEVEL / LOG_FORMAT environment
// variables, falling back to DefaultConfig for anything unset.
func NewFromEnv() *logrus.Logger {
	cfg := DefaultConfig()
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.Level = Level(strings.ToLower(lvl))
	}
	if fmt := os.Getenv("LOG_FORMAT"); fmt != "" {
		cfg.Format = Format(strings.ToLower(fmt))
	}
	return New(cfg)
}

func parseLevel(l Level) logrus.Level {
	switch l {
	case DebugLevel:
		return logrus.DebugLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case FatalLevel:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// Nop returns a logger with output discarded, for tests that don't want
// log noise but still want a non-nil *logrus.Logger.
func Nop() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(discard{})
	return logger
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// SchedulerLogger scopes a logger to the scheduler subsystem.
func SchedulerLogger(logger *logrus.Logger) *logrus.Entry {
	return logger.WithField("subsystem", "scheduler")
}

// PluginLogger scopes a logger to plugin lifecycle diagnostics.
func PluginLogger(logger *logrus.Logger, name string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{"subsystem": "plugin", "plugin": name})
}

// GPULogger scopes a logger to GPU device / shader diagnostics.
func GPULogger(logger *logrus.Logger) *logrus.Entry {
	return logger.WithField("subsystem", "gpu")
}

// RenderLogger scopes a logger to the renderer.
func RenderLogger(logger *logrus.Logger) *logrus.Entry {
	return logger.WithField("subsystem", "render")
}
