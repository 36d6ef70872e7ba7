package clog

import (
	"context"
	"log/slog"
	"slices"
)

// Context attribute keys shared by the worker and the CLI.
const (
	AgentKey      = "agent"
	TaskIDKey     = "task_id"
	AssignedByKey = "assigned_by"
)

// leadingKeys are emitted first, in this order, so lines about one task line up.
var leadingKeys = []string{AgentKey, TaskIDKey, AssignedByKey}

// AttributesHandler appends the attributes stored in the record's context.
type AttributesHandler struct {
	handler slog.Handler
}

func NewAttributesHandler(handler slog.Handler) *AttributesHandler {
	return &AttributesHandler{
		handler: handler,
	}
}

func (h *AttributesHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *AttributesHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs := GetAttributes(ctx); len(attrs) > 0 {
		record.AddAttrs(mapToAttrs(attrs)...)
	}
	return h.handler.Handle(ctx, record)
}

func (h *AttributesHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AttributesHandler{
		handler: h.handler.WithAttrs(attrs),
	}
}

func (h *AttributesHandler) WithGroup(name string) slog.Handler {
	return &AttributesHandler{
		handler: h.handler.WithGroup(name),
	}
}

func mapToAttrs(m map[string]any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(m))
	for _, k := range leadingKeys {
		if v, ok := m[k]; ok {
			attrs = append(attrs, slog.Any(k, v))
		}
	}
	rest := make([]string, 0, len(m))
	for k := range m {
		if !slices.Contains(leadingKeys, k) {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	for _, k := range rest {
		attrs = append(attrs, slog.Any(k, m[k]))
	}
	return attrs
}
