package clog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

const textTimeFormat = "2006-01-02 15:04:05"

type TextHandlerConfig struct {
	Color bool
	Level *slog.Level
}

type TextHandlerOption func(*TextHandlerConfig)

func WithColor(c bool) TextHandlerOption {
	return func(cfg *TextHandlerConfig) {
		cfg.Color = c
	}
}

func WithLevel(level slog.Level) TextHandlerOption {
	return func(cfg *TextHandlerConfig) {
		cfg.Level = &level
	}
}

// TextHandler writes one human-readable line per record:
//
//	2006-01-02 15:04:05 INFO "message" key=value ...
type TextHandler struct {
	cfg    TextHandlerConfig
	groups []string
	attrs  []slog.Attr
	mu     *sync.Mutex
	w      io.Writer
}

func NewTextHandler(w io.Writer, opts ...TextHandlerOption) *TextHandler {
	cfg := TextHandlerConfig{
		Color: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &TextHandler{
		cfg: cfg,
		mu:  &sync.Mutex{},
		w:   w,
	}
}

func (h *TextHandler) clone() *TextHandler {
	nh := *h
	nh.groups = append([]string(nil), h.groups...)
	nh.attrs = append([]slog.Attr(nil), h.attrs...)
	return &nh
}

func (h *TextHandler) Enabled(_ context.Context, l slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.cfg.Level != nil {
		minLevel = *h.cfg.Level
	}
	return l >= minLevel
}

func (h *TextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := h.clone()
	nh.groups = append(nh.groups, name)
	return nh
}

func (h *TextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := h.clone()
	prefix := h.prefix()
	for _, a := range attrs {
		a.Key = prefix + a.Key
		nh.attrs = append(nh.attrs, a)
	}
	return nh
}

func (h *TextHandler) prefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

func (h *TextHandler) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if h.cfg.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (h *TextHandler) Handle(_ context.Context, record slog.Record) error {
	buf := bytes.NewBuffer(make([]byte, 0, 256))

	fmt.Fprintf(buf, "%s ", record.Time.Format(textTimeFormat))

	var levelColor *color.Color
	switch {
	case record.Level >= slog.LevelError:
		levelColor = h.paint(color.FgRed)
	case record.Level >= slog.LevelWarn:
		levelColor = h.paint(color.FgYellow)
	case record.Level >= slog.LevelInfo:
		levelColor = h.paint(color.FgBlue)
	default:
		levelColor = h.paint(color.FgCyan)
	}
	levelColor.Fprintf(buf, "%-5s ", record.Level.String())
	h.paint(color.FgGreen).Fprintf(buf, "%q", record.Message)

	var errAttr *slog.Attr
	writeAttr := func(a slog.Attr) {
		if a.Equal(slog.Attr{}) {
			return
		}
		if a.Key == ErrorAttributeKey || a.Key == "error" {
			errAttr = &a
			return
		}
		fmt.Fprintf(buf, " %s=%s", a.Key, formatValue(a.Value))
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	prefix := h.prefix()
	record.Attrs(func(a slog.Attr) bool {
		a.Key = prefix + a.Key
		writeAttr(a)
		return true
	})
	if errAttr != nil {
		h.paint(color.FgRed).Fprintf(buf, " error=%q", errAttr.Value.String())
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func formatValue(v slog.Value) string {
	s := v.Resolve().String()
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
