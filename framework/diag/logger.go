// Package diag builds the root structured logger.
package diag

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/km-arc/go-scoped/framework/config"
)

// NewRootLogger returns a slog logger writing to w in the configured format
// and level. Logs never go to stdout; the CLI reserves it for results.
func NewRootLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("diag: invalid log level %q: %w", cfg.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("diag: unknown log format %q", cfg.Format)
	}
	return slog.New(handler), nil
}
