package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kazz187/agentfeed/internal/authz"
	"github.com/kazz187/agentfeed/internal/feed"
)

func timestamps(entries []*feed.Entry) []string {
	out := []string{}
	for _, e := range entries {
		out = append(out, e.Timestamp)
	}
	return out
}

func TestSelect(t *testing.T) {
	entries := []*feed.Entry{
		assignment(ts(1), "DC", map[string]any{"task": "done legacy"}),
		{Timestamp: ts(2), Agent: "JC", Action: feed.ActionTaskStarted, Details: map[string]any{"task": "done legacy"}},
		assignment(ts(3), "RandomUser", map[string]any{"task": "nope"}),
		assignment(ts(4), "bridge", map[string]any{"task": "via bridge", "assigned_by": "DC", "task_id": "X"}),
		assignment(ts(5), "DC", map[string]any{"task": "handled by id", "task_id": "Y"}),
		{Timestamp: ts(6), Agent: "JC", Action: feed.ActionTaskFailed, Details: map[string]any{"task_id": "Y"}},
		assignment(ts(7), "DC", map[string]any{"task": "legacy after failure"}),
		{Timestamp: ts(8), Agent: "DC", Action: feed.ActionTaskComplete, Details: map[string]any{"task": "not mine"}},
		{Timestamp: ts(9), Agent: "DC", Action: feed.ActionStatusUpdate},
	}
	policy := authz.New("DC")

	tests := []struct {
		name         string
		after        string
		candidates   []string
		unauthorized []string
		handled      []string
	}{
		{
			name:         "from the beginning",
			after:        "",
			candidates:   []string{ts(4), ts(7)},
			unauthorized: []string{ts(3)},
			handled:      []string{ts(1), ts(5)},
		},
		{
			name:         "after cursor",
			after:        ts(4),
			candidates:   []string{ts(7)},
			unauthorized: []string{},
			handled:      []string{ts(5)},
		},
		{
			name:         "cursor at the end",
			after:        ts(9),
			candidates:   []string{},
			unauthorized: []string{},
			handled:      []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := Select(entries, policy, "JC", tt.after)
			assert.Equal(t, tt.candidates, timestamps(sel.Candidates))
			assert.Equal(t, tt.unauthorized, timestamps(sel.Unauthorized))
			assert.Equal(t, tt.handled, timestamps(sel.Handled))
		})
	}
}

func TestSelect_LegacyFailedDoesNotCountAsHandled(t *testing.T) {
	entries := []*feed.Entry{
		assignment(ts(1), "DC", map[string]any{"task": "legacy"}),
		{Timestamp: ts(2), Agent: "JC", Action: feed.ActionTaskFailed, Details: map[string]any{"task": "legacy"}},
	}
	sel := Select(entries, authz.New("DC"), "JC", "")
	assert.Equal(t, []string{ts(1)}, timestamps(sel.Candidates))
}
