package logging

import (
	"context"
	"log/slog"
)

// SlogLogger is the Logger the satellite binaries run with. New builds one
// over a tint or JSON handler; tests wrap a text handler over a buffer.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger adapts l. Every call goes to the *Context variant so that
// handlers can read request values from ctx.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, args...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

// With is how modules tag their lines, e.g. l.With("module", "grpc_server").
func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
