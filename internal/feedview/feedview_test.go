package feedview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kazz187/agentfeed/internal/feed"
	"github.com/kazz187/agentfeed/pkg/color"
)

func entry(agent, action string, details map[string]any) *feed.Entry {
	return &feed.Entry{Timestamp: "2026-01-02T03:04:05.000000+00:00", Agent: agent, Action: action, Details: details}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name  string
		entry *feed.Entry
		want  string
	}{
		{"assigned", entry("DC", feed.ActionTaskAssigned, map[string]any{"task": "create x.txt", "priority": "HIGH"}), "[HIGH] create x.txt"},
		{"complete", entry("JC", feed.ActionTaskComplete, map[string]any{"task": "create x.txt"}), "create x.txt"},
		{"failed", entry("JC", feed.ActionTaskFailed, map[string]any{"task": "t", "error": "boom"}), "t (boom)"},
		{"message", entry("DC", feed.MessageAction("JC"), map[string]any{"from": "DC", "message": "hi"}), "DC: hi"},
		{"issue", entry("JC", feed.ActionIssueFound, map[string]any{"issue": "nil map", "severity": "HIGH"}), "[HIGH] nil map"},
		{"other", entry("JC", feed.ActionSessionStart, map[string]any{}), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.entry))
		})
	}
}

func TestLine(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, color.NewPainter(false), "JC").Line(entry("DC", feed.ActionTaskAssigned, map[string]any{"task": "create x.txt", "priority": "LOW"}))
	assert.Equal(t, "2026-01-02T03:04:05 [DC] task_assigned  [LOW] create x.txt\n", buf.String())
}

func TestBlock(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, color.NewPainter(false), "JC")

	r.Block(entry("DC", feed.ActionTaskAssigned, map[string]any{
		"task":            "create x.txt",
		"priority":        "HIGH",
		"files_to_create": []any{"x.txt"},
		"task_id":         "01J0000000000000000000000",
	}))
	out := buf.String()
	assert.Contains(t, out, "NEW TASK [HIGH]")
	assert.Contains(t, out, "  Create:\n    - x.txt\n")
	assert.Contains(t, out, "id: 01J0000000000000000000000")

	buf.Reset()
	r.Block(entry("JC", feed.ActionStatusUpdate, map[string]any{"status": "idle", "files": []any{"a", "b"}}))
	out = buf.String()
	assert.Contains(t, out, "  status: idle\n")
	assert.Contains(t, out, "  files:\n    - a\n    - b\n")
}

func TestGrouped(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, color.NewPainter(false), "JC")
	entries := []*feed.Entry{
		entry("DC", feed.ActionTaskAssigned, map[string]any{"task": "one"}),
		entry("JC", feed.ActionTaskStarted, map[string]any{"task": "one"}),
		entry("DC", feed.MessageAction("JC"), map[string]any{"from": "DC", "message": "ping"}),
		entry("KC", feed.ActionSessionStart, nil),
	}

	g := r.Group(entries)
	assert.Len(t, g.Tasks, 2)
	assert.Len(t, g.Own, 1)
	assert.Len(t, g.Other, 1)

	r.Grouped(entries)
	out := buf.String()
	assert.Contains(t, out, "[TASKS]")
	assert.Contains(t, out, "[RECENT JC ACTIVITY]")
	assert.Contains(t, out, "[OTHER]")

	buf.Reset()
	r.Grouped(nil)
	assert.Equal(t, "(no entries in feed yet)\n", buf.String())
}
