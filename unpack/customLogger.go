package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Handler writes "[time] [LEVEL] [values...] message" lines. Attribute keys
// are dropped; values bound with Logger.With come before the record's own.
// Info lines omit the level.
type Handler struct {
	level slog.Leveler
	attrs []slog.Attr
	mu    *sync.Mutex
	out   io.Writer
}

func NewHandler(o io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	var level slog.Leveler = slog.LevelInfo
	if opts.Level != nil {
		level = opts.Level
	}
	return &Handler{out: o, level: level, mu: &sync.Mutex{}}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &Handler{level: h.level, attrs: merged, out: h.out, mu: h.mu}
}

// Groups only namespace keys, and keys are never printed.
func (h *Handler) WithGroup(name string) slog.Handler {
	return h
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Time.Format("[2006/01/02 15:04:05]"))
	if r.Level != slog.LevelInfo {
		sb.WriteString(" [" + r.Level.String() + "]")
	}

	writeValue := func(a slog.Attr) bool {
		sb.WriteString(" [" + a.Value.Resolve().String() + "]")
		return true
	}
	for _, a := range h.attrs {
		writeValue(a)
	}
	r.Attrs(writeValue)

	sb.WriteString(" " + r.Message + "\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

// Logger routes informative messages and errors to separate slog loggers.
type Logger struct {
	InfoLog  *slog.Logger
	ErrorLog *slog.Logger
}

func (l Logger) Info(message string, module string) {
	l.InfoLog.Info(message, "module", module)
}

func (l Logger) Error(message string) {
	l.ErrorLog.Error(message)
}
