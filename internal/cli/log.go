package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Commands find the CLI's logger in their context. A command working on
// one map narrows it with withMap so every line names the map.

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stopwatch times one operation on a map.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
	kv     []any
}

// startStopwatch logs op at debug level and starts timing it.
func startStopwatch(l *log.Logger, op string, kv ...any) *stopwatch {
	l.Debug(op, kv...)
	return &stopwatch{logger: l, start: time.Now(), kv: kv}
}

// done logs summary at info level with the stopwatch's fields and a
// "took" field.
func (s *stopwatch) done(summary string) {
	kv := make([]any, 0, len(s.kv)+2)
	kv = append(kv, s.kv...)
	kv = append(kv, "took", time.Since(s.start).Round(time.Millisecond))
	s.logger.Info(summary, kv...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// withMap scopes the context's logger to one map.
func withMap(ctx context.Context, name string) context.Context {
	return withLogger(ctx, loggerFromContext(ctx).With("map", name))
}

// loggerFromContext returns the logger set by withLogger, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
