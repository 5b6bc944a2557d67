// Package logger wraps log/slog with env-driven configuration.
package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	slogmulti "github.com/samber/slog-multi"

	"github.com/jrazmi/smarttasks/sdk/environment"
)

// Logger is a wrapper around the standard slog.Logger.
type Logger struct {
	*slog.Logger
	closers []io.Closer
}

// Options is the exportable logger configuration.
type Options struct {
	Level      string `env:"LOG_LEVEL" default:"INFO"`
	Output     string `env:"LOG_OUTPUT" default:"STDOUT"`
	Format     string `env:"LOG_FORMAT" default:"json"`
	TimeFormat string `env:"LOG_TIME_FORMAT" default:"RFC3339"`
	File       string `env:"LOG_FILE"`
	AddSource  bool   `env:"LOG_ADD_SOURCE" default:"false"`
}

type options struct {
	level      slog.Level
	output     io.Writer
	addSource  bool
	format     string
	timeFormat string
	extra      []slog.Handler
}

// Option adjusts the runtime logger options.
type Option func(*options)

func WithLevel(level string) Option {
	return func(o *options) {
		o.level = parseLevel(level)
	}
}

func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

func WithFormat(format string) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithHandler fans records out to an additional handler.
func WithHandler(h slog.Handler) Option {
	return func(o *options) {
		o.extra = append(o.extra, h)
	}
}

// NewDefault returns a JSON logger on stdout at INFO.
func NewDefault(opts ...Option) *Logger {
	l, _ := newLogger(Options{
		Level:      "INFO",
		Output:     "STDOUT",
		Format:     "json",
		TimeFormat: "RFC3339",
	}, opts...)
	return l
}

// New returns a text logger writing to w. Intended for tools and tests.
func New(w io.Writer, level string) *Logger {
	return NewDefault(WithOutput(w), WithFormat("text"), WithLevel(level))
}

// NewFromEnv builds a logger from PREFIX_LOG_* variables.
func NewFromEnv(prefix string, opts ...Option) (*Logger, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing logger config: %w", err)
	}
	return newLogger(cfg, opts...)
}

func NewStdLogger(logger *Logger, level slog.Level) *log.Logger {
	return slog.NewLogLogger(logger.Handler(), level)
}

func newLogger(cfg Options, opts ...Option) (*Logger, error) {
	o := &options{
		level:      parseLevel(cfg.Level),
		output:     parseOutput(cfg.Output),
		addSource:  cfg.AddSource,
		timeFormat: cfg.TimeFormat,
		format:     cfg.Format,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.output == nil {
		o.output = os.Stdout
	}

	l := &Logger{}
	handlerOpts := &slog.HandlerOptions{
		Level:       o.level,
		AddSource:   o.addSource,
		ReplaceAttr: replaceTime(o.timeFormat),
	}

	handlers := []slog.Handler{newHandler(o.format, o.output, handlerOpts)}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		l.closers = append(l.closers, f)
		// the file always gets JSON so it can be shipped as-is
		handlers = append(handlers, slog.NewJSONHandler(f, handlerOpts))
	}
	handlers = append(handlers, o.extra...)

	if len(handlers) == 1 {
		l.Logger = slog.New(handlers[0])
	} else {
		l.Logger = slog.New(slogmulti.Fanout(handlers...))
	}
	return l, nil
}

func newHandler(format string, w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func replaceTime(format string) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key != slog.TimeKey || format == "" || len(groups) > 0 {
			return a
		}
		t := a.Value.Time()
		switch format {
		case "Unix":
			return slog.Int64(slog.TimeKey, t.Unix())
		case "UnixMilli":
			return slog.Int64(slog.TimeKey, t.UnixMilli())
		case "RFC3339Nano":
			return slog.String(slog.TimeKey, t.Format(time.RFC3339Nano))
		case "RFC3339":
			return slog.String(slog.TimeKey, t.Format(time.RFC3339))
		default:
			return slog.String(slog.TimeKey, t.Format(format))
		}
	}
}

// Close releases any log files opened by the logger.
func (l *Logger) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// DebugContextf logs a debug message with formatting
func (l *Logger) DebugContextf(ctx context.Context, format string, args ...any) {
	l.DebugContext(ctx, fmt.Sprintf(format, args...))
}

// InfoContextf logs an info message with formatting
func (l *Logger) InfoContextf(ctx context.Context, format string, args ...any) {
	l.InfoContext(ctx, fmt.Sprintf(format, args...))
}

// WarnContextf logs a warning message with formatting
func (l *Logger) WarnContextf(ctx context.Context, format string, args ...any) {
	l.WarnContext(ctx, fmt.Sprintf(format, args...))
}

// ErrorContextf logs an error message with formatting
func (l *Logger) ErrorContextf(ctx context.Context, format string, args ...any) {
	l.ErrorContext(ctx, fmt.Sprintf(format, args...))
}
