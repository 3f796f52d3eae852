package observability

import (
	"io"
	"log/slog"
)

const attrService = "service"

// NewLogger builds the process logger: text or JSON records at the configured
// level, with the service name pre-attached.
func NewLogger(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var handler slog.Handler
	if cfg.LogJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	if cfg.ServiceName != "" {
		logger = logger.With(slog.String(attrService, cfg.ServiceName))
	}

	return logger
}
