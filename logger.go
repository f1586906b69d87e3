package jvxl

import (
	"log/slog"

	"github.com/flywave/go-jvxl/internal/logging"
)

// SetLogger sets the logger used by the codec, readers, extractor and
// pipeline. Logging is silent until a logger is set; nil silences it again.
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return logging.Logger()
}
