// Package logging configures structured JSON logging for the daemon.
package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

// Setup installs a JSON logger writing to stdout as the process default and
// bridges the standard library logger onto it.
func Setup(service, env string, level slog.Leveler) *slog.Logger {
	return setup(os.Stdout, service, env, level)
}

// New returns a JSON logger writing to w without touching process defaults.
func New(w io.Writer, service, env string, level slog.Leveler) *slog.Logger {
	return slog.New(newHandler(w, level)).With(baseArgs(service, env)...)
}

func setup(w io.Writer, service, env string, level slog.Leveler) *slog.Logger {
	handler := newHandler(w, level)
	base := slog.New(handler).With(baseArgs(service, env)...)
	slog.SetDefault(base)

	stdBridge := slog.NewLogLogger(handler.WithAttrs(baseAttrs(service, env)), slog.LevelInfo)
	stdBridge.SetFlags(0)
	log.SetOutput(stdBridge.Writer())
	log.SetFlags(0)
	log.SetPrefix("")
	return base
}

func newHandler(w io.Writer, level slog.Leveler) slog.Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				return slog.Attr{Key: "timestamp", Value: attr.Value}
			case slog.LevelKey:
				return slog.String("severity", strings.ToUpper(attr.Value.String()))
			case slog.MessageKey:
				return slog.Attr{Key: "message", Value: attr.Value}
			case "signature", "authority":
				return MaskField(attr.Key, attr.Value.String())
			}
			return attr
		},
	})
}

func baseAttrs(service, env string) []slog.Attr {
	attrs := []slog.Attr{slog.String("service", strings.TrimSpace(service))}
	if env = strings.TrimSpace(env); env != "" {
		attrs = append(attrs, slog.String("env", env))
	}
	return attrs
}

func baseArgs(service, env string) []any {
	attrs := baseAttrs(service, env)
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}
