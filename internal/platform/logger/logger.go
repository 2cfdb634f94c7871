package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "info", "":
		return Info
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func (l Level) slog() slog.Level {
	switch l {
	case Debug:
		return slog.LevelDebug
	case Warn:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// SlogLogger adapta *slog.Logger a la interfaz de campos por map que usan los módulos.
type SlogLogger struct {
	l *slog.Logger
}

type Options struct {
	Level  Level
	Format Format
	App    string

	// Output por defecto os.Stdout.
	Output io.Writer
}

func New(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	hopts := &slog.HandlerOptions{Level: opts.Level.slog()}

	var h slog.Handler
	switch opts.Format {
	case FormatJSON:
		h = slog.NewJSONHandler(out, hopts)
	default:
		h = slog.NewTextHandler(out, hopts)
	}

	l := slog.New(h)
	if app := strings.TrimSpace(opts.App); app != "" {
		l = l.With("app", app)
	}
	return &SlogLogger{l: l}
}

// FromSlog envuelve un *slog.Logger existente.
func FromSlog(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{l: l}
}

// Nop descarta todo; útil como default en servicios y tests.
func Nop() Logger {
	return &SlogLogger{l: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

func (s *SlogLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return s
	}
	return &SlogLogger{l: s.l.With(attrs(fields)...)}
}

// Slog expone el logger subyacente (p.ej. para migraciones).
func (s *SlogLogger) Slog() *slog.Logger { return s.l }

func (s *SlogLogger) Debug(msg string, fields map[string]any) { s.log(slog.LevelDebug, msg, fields) }
func (s *SlogLogger) Info(msg string, fields map[string]any)  { s.log(slog.LevelInfo, msg, fields) }
func (s *SlogLogger) Warn(msg string, fields map[string]any)  { s.log(slog.LevelWarn, msg, fields) }
func (s *SlogLogger) Error(msg string, fields map[string]any) { s.log(slog.LevelError, msg, fields) }

func (s *SlogLogger) log(lvl slog.Level, msg string, fields map[string]any) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, lvl) {
		return
	}
	s.l.Log(ctx, lvl, msg, attrs(fields)...)
}

// attrs ordena keys para salida estable (útil en tests/logs).
func attrs(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, fields[k]))
	}
	return out
}
