package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// LegacyLogger writes "[LEVEL] msg k=v" lines with fmt, without slog or rotation.
type LegacyLogger struct {
	mu     *sync.Mutex
	out    io.Writer
	level  Level
	fields []any
}

// NewLegacyLogger writes to w (os.Stderr when nil) at or above level
func NewLegacyLogger(w io.Writer, level Level) *LegacyLogger {
	if w == nil {
		w = os.Stderr
	}
	return &LegacyLogger{mu: &sync.Mutex{}, out: w, level: level}
}

func (l *LegacyLogger) log(level Level, msg string, args []any) {
	if level < l.level {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(level.String()), msg)
	writePairs(&b, l.fields)
	writePairs(&b, args)
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, b.String())
}

func writePairs(b *strings.Builder, args []any) {
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(b, " %v", args[i])
		}
	}
}

func (l *LegacyLogger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args) }
func (l *LegacyLogger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args) }
func (l *LegacyLogger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args) }
func (l *LegacyLogger) Error(msg string, args ...any) { l.log(LevelError, msg, args) }

// With returns a logger sharing the writer and lock with extra fields appended
func (l *LegacyLogger) With(args ...any) Logger {
	fields := make([]any, 0, len(l.fields)+len(args))
	fields = append(fields, l.fields...)
	fields = append(fields, args...)
	return &LegacyLogger{mu: l.mu, out: l.out, level: l.level, fields: fields}
}

func (l *LegacyLogger) Sync() error     { return nil }
func (l *LegacyLogger) Shutdown() error { return nil }
