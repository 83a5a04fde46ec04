package logging

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides optional verbose logging and lightweight timing helpers on
// top of zerolog. The zero value discards everything.
type Logger struct {
	zl      *zerolog.Logger
	Verbose bool
}

// Format selects the zerolog output encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

func New(writer io.Writer, verbose bool) Logger {
	return NewWithFormat(writer, verbose, FormatConsole)
}

func NewWithFormat(writer io.Writer, verbose bool, format Format) Logger {
	if writer == nil {
		return Logger{}
	}
	out := writer
	if format != FormatJSON {
		out = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.Kitchen}
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(out).With().Timestamp().Logger().Level(level)
	return Logger{zl: &zl, Verbose: verbose}
}

// FromZerolog adapts an existing zerolog logger, e.g. zerolog.NewTestWriter in tests.
func FromZerolog(zl zerolog.Logger, verbose bool) Logger {
	return Logger{zl: &zl, Verbose: verbose}
}

// With returns a child logger carrying an extra string field.
func (l Logger) With(key, value string) Logger {
	if l.zl == nil {
		return l
	}
	child := l.zl.With().Str(key, value).Logger()
	return Logger{zl: &child, Verbose: l.Verbose}
}

func (l Logger) Infof(format string, args ...any) {
	if l.zl == nil {
		return
	}
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

func (l Logger) Warnf(format string, args ...any) {
	if l.zl == nil {
		return
	}
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

func (l Logger) Errorf(format string, args ...any) {
	if l.zl == nil {
		return
	}
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

func (l Logger) Verbosef(format string, args ...any) {
	if !l.Verbose || l.zl == nil {
		return
	}
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}

// Measure returns a stop function that logs the elapsed time when called.
func (l Logger) Measure(label string) func() {
	if !l.Verbose || l.zl == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		l.zl.Debug().Dur("elapsed", elapsed).Msg(label)
	}
}

type contextKey struct{}

// NewContext stores the logger in ctx.
func NewContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(contextKey{}).(Logger); ok {
		return l
	}
	return Logger{}
}
