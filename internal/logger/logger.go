package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the application-wide logger type, aliased to zerolog.Logger so
// other packages only import storefront/internal/logger.
type Logger = zerolog.Logger

// Event is an alias for zerolog.Event.
type Event = zerolog.Event

const consoleTimeFormat = "2006-01-02 15:04:05"

// outputSettings mirrors LOG_OUTPUT, LOG_FORMAT and LOG_FILE_PATH.
type outputSettings struct {
	mode     string
	format   string
	filePath string
}

func readOutputSettings() outputSettings {
	settings := outputSettings{
		mode:     strings.ToLower(strings.TrimSpace(os.Getenv("LOG_OUTPUT"))),
		format:   strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT"))),
		filePath: strings.TrimSpace(os.Getenv("LOG_FILE_PATH")),
	}
	if settings.mode == "" {
		settings.mode = "stdout"
	}
	if settings.format == "" {
		settings.format = "console"
	}
	return settings
}

func (s outputSettings) wrap(w io.Writer) io.Writer {
	if s.format == "json" {
		return w
	}
	return zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
}

// writers returns the configured destinations and any warnings to log once
// the logger is ready.
func (s outputSettings) writers() ([]io.Writer, []string) {
	var (
		out      []io.Writer
		warnings []string
	)
	if s.mode == "stdout" || s.mode == "both" {
		out = append(out, s.wrap(os.Stdout))
	}
	if s.mode == "file" || s.mode == "both" {
		if s.filePath == "" {
			warnings = append(warnings, "LOG_OUTPUT requires a file but LOG_FILE_PATH is not set; disabling file logging")
		} else if file, err := os.OpenFile(s.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to open log file '%s', disabling file logging: %v", s.filePath, err))
		} else {
			out = append(out, s.wrap(file))
		}
	}
	if len(out) == 0 {
		out = append(out, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: consoleTimeFormat})
		warnings = append(warnings, "No valid log output configured, falling back to stdout console")
	}
	return out, warnings
}

// Init configures the global logger from level and the LOG_* environment.
func Init(level string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	settings := readOutputSettings()
	writers, warnings := settings.writers()
	var output io.Writer = writers[0]
	if len(writers) > 1 {
		output = zerolog.MultiLevelWriter(writers...)
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
		warnings = append(warnings, fmt.Sprintf("Invalid log level %q, defaulting to 'info'", level))
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(output).Level(lvl)

	for _, msg := range warnings {
		log.Warn().Msg(msg)
	}
	log.Info().
		Str("level", lvl.String()).
		Str("output_mode", settings.mode).
		Str("format", settings.format).
		Str("log_file_path", settings.filePath).
		Msg("Logger initialized")
}

// Get returns the configured logger instance.
func Get() *zerolog.Logger {
	return &log.Logger
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) {
	log.Logger = log.Output(w)
}

// HTTPEvent logs HTTP request events with standardized fields.
func HTTPEvent(method, path string, status int, durationMs float64) *zerolog.Event {
	return log.Info().
		Str("event_category", "http").
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Float64("duration_ms", durationMs)
}

// HTTPError logs HTTP error events.
func HTTPError(method, path string, status int, err error) *zerolog.Event {
	return log.Error().
		Str("event_category", "http").
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Err(err)
}

// RouteEvent logs edge routing decisions at debug level.
func RouteEvent(action, reason string) *zerolog.Event {
	return log.Debug().
		Str("event_category", "routing").
		Str("action", action).
		Str("reason", reason)
}

// PanicEvent logs panic recovery events.
func PanicEvent(err interface{}, stack string) *zerolog.Event {
	return log.Error().
		Str("event_category", "panic").
		Interface("error", err).
		Str("stack", stack)
}
