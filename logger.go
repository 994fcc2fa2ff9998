package figrec

import (
	"log/slog"

	"github.com/figdraw/figrec/internal/logging"
)

// SetLogger configures the logger for figrec and all its sub-packages.
// By default figrec produces no log output. Pass nil to silence logging
// again.
//
// SetLogger is safe for concurrent use: it stores the new logger
// atomically.
//
// Log levels used:
//   - [slog.LevelDebug]: per-call replay diagnostics
//   - [slog.LevelWarn]: calls skipped or failed during replay and
//     validation
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
