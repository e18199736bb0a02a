// Package logging builds the slog loggers used across the engine and tools
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Options selects level, encoding and destination
type Options struct {
	Level string
	// Format is "text" or "json"
	Format string
	Output io.Writer
	// Component is attached to every record when set
	Component string
}

// ParseLevel maps debug/info/warn/error to slog levels, empty means info
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New builds a logger, a nil Output discards everything
func New(opts Options) (*slog.Logger, error) {
	if opts.Output == nil {
		return Discard(), nil
	}
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	hopts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		handler = slog.NewTextHandler(opts.Output, hopts)
	case "json":
		handler = slog.NewJSONHandler(opts.Output, hopts)
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	logger := slog.New(handler)
	if opts.Component != "" {
		logger = logger.With("component", opts.Component)
	}
	return logger, nil
}

// Discard drops every record
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
