// Package tlog is the node's structured logging facade: a thin
// wrapper over log/slog exposing the Trace/Debug/Info/Warn/Error
// leveled, key-value call style used throughout this codebase.
package tlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level mirrors the five severities the rest of the codebase logs at.
// Trace sits below slog's built-in Debug, so it is modeled as a
// negative custom slog.Level rather than reusing LevelDebug.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

const slogLevelTrace = slog.Level(-8)

func (l Level) toSlog() slog.Level {
	switch l {
	case LevelTrace:
		return slogLevelTrace
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel accepts the lowercase names used by the --verbosity flag.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("tlog: unknown level %q", s)
	}
}

// Logger is the handle every package logs through.
type Logger struct {
	slog *slog.Logger
}

var root = New(LevelInfo, os.Stderr)

// SetDefault replaces the package-level default logger, typically once at
// startup after CLI flags are parsed.
func SetDefault(l *Logger) { root = l }

// New builds a Logger writing slog text records to w. If w is a terminal
// (detected with go-isatty), w is wrapped with go-colorable, which only
// translates ANSI escape sequences on Windows consoles. The text handler
// emits no color codes, so the output is plain text in either case.
func New(level Level, w io.Writer) *Logger {
	out := w
	isTerm := false
	if f, ok := w.(*os.File); ok {
		isTerm = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	if isTerm {
		out = colorable.NewColorable(w.(*os.File))
	}
	h := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level.toSlog(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == slogLevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	})
	return &Logger{slog: slog.New(h)}
}

// With returns a child logger with the given key-value pairs attached to
// every subsequent record.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{slog: l.slog.With(kv...)}
}

func (l *Logger) log(level slog.Level, msg string, kv ...any) {
	l.slog.Log(context.Background(), level, msg, kv...)
}

func (l *Logger) Trace(msg string, kv ...any) { l.log(slogLevelTrace, msg, kv...) }
func (l *Logger) Debug(msg string, kv ...any) { l.log(slog.LevelDebug, msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.log(slog.LevelInfo, msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.log(slog.LevelWarn, msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.log(slog.LevelError, msg, kv...) }

// Package-level helpers forward to the default logger, matching the
// teacher's global log.Info/log.Warn call sites.
func Trace(msg string, kv ...any) { root.Trace(msg, kv...) }
func Debug(msg string, kv ...any) { root.Debug(msg, kv...) }
func Info(msg string, kv ...any)  { root.Info(msg, kv...) }
func Warn(msg string, kv ...any)  { root.Warn(msg, kv...) }
func Error(msg string, kv ...any) { root.Error(msg, kv...) }

func With(kv ...any) *Logger { return root.With(kv...) }
