// Package logger provides structured logging setup for scenariogen.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/Strob0t/scenariogen/internal/config"
)

// Output receives all log records. Artifacts go to files, so stderr keeps
// stdout free for command output.
var Output io.Writer = os.Stderr

// New creates a *slog.Logger from the given Logging config.
// Records are JSON unless stderr is a terminal, in which case they are text.
// Every record carries a "service" attribute. The returned Closer flushes
// the async handler and must be called before exit.
func New(cfg config.Logging) (*slog.Logger, Closer) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if isTerminal(Output) {
		handler = slog.NewTextHandler(Output, opts)
	} else {
		handler = slog.NewJSONHandler(Output, opts)
	}

	var closer Closer = nopCloser{}
	if cfg.Async {
		ah := NewAsyncHandler(handler, 1024, 1)
		handler = ah
		closer = ah
	}

	return slog.New(handler).With("service", cfg.Service), closer
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
