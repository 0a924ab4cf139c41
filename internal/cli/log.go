package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Timestamps are wall-clock with
// centiseconds, enough to tell search phases apart.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// commandLogger tags every line with the running subcommand.
func commandLogger(l *log.Logger, command string) *log.Logger {
	if command == "" {
		return l
	}
	return l.WithPrefix(command)
}

// step times one unit of work and logs it when finished.
type step struct {
	logger *log.Logger
	msg    string
	start  time.Time
}

func startStep(l *log.Logger, msg string) *step {
	l.Debug(msg + "...")
	return &step{logger: l, msg: msg, start: time.Now()}
}

// done logs the step at info level with its keyvals and elapsed time,
// e.g. "Planned balance moves=3 total=34 elapsed=12ms".
func (s *step) done(keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(s.start).Round(time.Millisecond))
	s.logger.Info(s.msg, keyvals...)
}

// failed logs the step's error at warn level.
func (s *step) failed(err error) {
	s.logger.Warn(s.msg+" failed", "err", err, "elapsed", time.Since(s.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext falls back to log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
