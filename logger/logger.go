// Package logger wraps zerolog with the component loggers the pipeline uses.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a zerolog logger carrying component fields
type Logger struct {
	logger zerolog.Logger
}

// Default is the process-wide logger; it is created on first use if Init was not called
var Default *Logger

// Init builds Default on stderr; stdout is reserved for command output
func Init() {
	level := getLogLevel()
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	Default = New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	Default.Debug().Str("level", level.String()).Msg("Logger initialized")
}

// New creates a timestamped logger writing to w
func New(w io.Writer) *Logger {
	return &Logger{logger: zerolog.New(w).With().Timestamp().Logger()}
}

// getLogLevel reads LOG_LEVEL, falling back to debug outside production
func getLogLevel() zerolog.Level {
	name := os.Getenv("LOG_LEVEL")
	if name == "" {
		if os.Getenv("PATENT_ENVIRONMENT") == "production" {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}

	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// WithField returns a child logger with key set on every event
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Logger) Info() *zerolog.Event { return l.logger.Info() }
func (l *Logger) Warn() *zerolog.Event { return l.logger.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }

func base() *Logger {
	if Default == nil {
		Init()
	}
	return Default
}

// Info logs a formatted message on Default
func Info(format string, v ...interface{}) {
	base().Info().Msgf(format, v...)
}

// Warn logs a formatted message on Default
func Warn(format string, v ...interface{}) {
	base().Warn().Msgf(format, v...)
}

// Error logs a formatted message on Default
func Error(format string, v ...interface{}) {
	base().Error().Msgf(format, v...)
}

// ForExtractor tags events with the extraction stage, e.g. "kipris" or "patentgo"
func ForExtractor(name string) *Logger {
	return base().WithField("extractor", name)
}

func ForOrchestrator() *Logger { return base().WithField("component", "orchestrator") }
func ForWorker() *Logger { return base().WithField("component", "worker") }
func ForPublisher() *Logger { return base().WithField("component", "publisher") }
func ForCache() *Logger { return base().WithField("component", "cache") }
