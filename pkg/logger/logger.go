// Package logger wraps zerolog with fields carried on the request context.
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// FormatConsole switches output to zerolog's human readable writer.
const FormatConsole = "console"

// Options configures the structured logger. Level and Format take the raw
// config strings; anything unrecognised falls back to info and JSON.
type Options struct {
	Service   string
	Terminal  string
	Level     string
	Format    string
	WarnStack bool
	Output    io.Writer
}

type Logger struct {
	root      zerolog.Logger
	warnStack bool
}

type entryKey struct{}

func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(strings.TrimSpace(opts.Format), FormatConsole) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	fields := zerolog.New(out).With().Timestamp().Str("service", opts.Service)
	if opts.Terminal != "" {
		fields = fields.Str("terminal_id", opts.Terminal)
	}
	return &Logger{
		root:      fields.Logger().Level(level(opts.Level)),
		warnStack: opts.WarnStack,
	}
}

// Nop returns a logger that discards every entry.
func Nop() *Logger {
	return &Logger{root: zerolog.Nop()}
}

func level(raw string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) entry(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if e, ok := ctx.Value(entryKey{}).(*zerolog.Logger); ok {
			return e
		}
	}
	return &l.root
}

func (l *Logger) with(ctx context.Context, build func(zerolog.Context) zerolog.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	e := build(l.entry(ctx).With()).Logger()
	return context.WithValue(ctx, entryKey{}, &e)
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Interface(key, value) })
}

func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Fields(fields) })
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("request_id", requestID) })
}

// WithCustomerID tags entries with the customer the cart is being rung up for.
func (l *Logger) WithCustomerID(ctx context.Context, customerID int64) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Int64("customer_id", customerID) })
}

func (l *Logger) WithCartSlot(ctx context.Context, slot string) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("cart_slot", slot) })
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.entry(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.entry(ctx).Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	ev := l.entry(ctx).Warn()
	if l.warnStack {
		ev = ev.Str("stack", stack())
	}
	ev.Msg(msg)
}

// Error always carries a stack.
func (l *Logger) Error(ctx context.Context, msg string, err error) {
	l.entry(ctx).Error().Err(err).Str("stack", stack()).Msg(msg)
}

func stack() string {
	return strings.TrimSpace(string(debug.Stack()))
}
