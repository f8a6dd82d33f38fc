// Package logging builds the process slog.Logger.
//
// Records are rendered by a charmbracelet/log handler so step logs read the
// same in a terminal and in the Actions log viewer. Library packages never
// construct loggers themselves; they accept a *slog.Logger and fall back to
// slog.Default via Ensure.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

// Mode controls the handler style used when constructing a logger.
type Mode int

const (
	// ModeText renders records as short human-readable lines.
	ModeText Mode = iota
	// ModeJSON renders records as JSON objects.
	ModeJSON
	// ModeLogfmt renders records as logfmt key=value pairs.
	ModeLogfmt
)

// New constructs a logger writing to w. A nil level means info.
func New(mode Mode, w io.Writer, level slog.Leveler) *slog.Logger {
	if w == nil {
		panic("logging: writer must not be nil")
	}
	if level == nil {
		level = slog.LevelInfo
	}

	opts := log.Options{
		Level:           log.Level(level.Level()),
		ReportTimestamp: mode != ModeText,
	}
	switch mode {
	case ModeJSON:
		opts.Formatter = log.JSONFormatter
	case ModeLogfmt:
		opts.Formatter = log.LogfmtFormatter
	default:
		opts.Formatter = log.TextFormatter
	}

	return slog.New(log.NewWithOptions(w, opts))
}

// ParseMode maps "text", "json" or "logfmt" to a Mode. Unknown values are text.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return ModeJSON
	case "logfmt":
		return ModeLogfmt
	default:
		return ModeText
	}
}

// ParseLevel maps a level name to a slog.Level.
// An empty name yields info.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return slog.LevelInfo, err
	}
	return slog.Level(lvl), nil
}

// LevelFromEnv returns debug when the runner has step debugging enabled
// (RUNNER_DEBUG=1 or ACTIONS_STEP_DEBUG=true), otherwise fallback.
func LevelFromEnv(getenv func(string) string, fallback slog.Level) slog.Level {
	if getenv("RUNNER_DEBUG") == "1" || strings.EqualFold(getenv("ACTIONS_STEP_DEBUG"), "true") {
		return slog.LevelDebug
	}
	return fallback
}

// Ensure returns the provided logger or the process default if nil.
func Ensure(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
