package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/agentfeed/internal/feed"
)

func TestFromEntry(t *testing.T) {
	e := &feed.Entry{
		Timestamp: "2026-01-01T00:00:00.000000+00:00",
		Agent:     "discord-bridge",
		Action:    feed.ActionTaskAssigned,
		Details: map[string]any{
			"task":            "Create file x.txt",
			"priority":        "high",
			"files_to_create": []any{"x.txt"},
			"requirements":    []any{"non-empty"},
			"assigned_by":     "DC",
			"task_id":         "01HZX3V0Q4J2C9X8G7F6E5D4C3",
			"kind":            "Create_File",
		},
	}

	got, err := FromEntry(e)
	require.NoError(t, err)
	assert.Equal(t, "Create file x.txt", got.Description)
	assert.Equal(t, PriorityHigh, got.Priority)
	assert.Equal(t, KindCreateFile, got.Kind)
	assert.Equal(t, []string{"x.txt"}, got.FilesToCreate)
	assert.Equal(t, []string{"non-empty"}, got.Requirements)
	assert.Equal(t, "DC", got.AssignedBy)
	assert.Equal(t, "01HZX3V0Q4J2C9X8G7F6E5D4C3", got.ID)
	assert.False(t, got.Legacy())
}

func TestFromEntry_Legacy(t *testing.T) {
	e := &feed.Entry{Timestamp: "t1", Agent: "DC", Action: feed.ActionTaskAssigned, Details: map[string]any{"task": "say hi"}}

	got, err := FromEntry(e)
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, got.Priority)
	assert.Equal(t, KindNone, got.Kind)
	assert.Equal(t, "DC", got.AssignedBy)
	assert.Equal(t, "t1", got.AssignedAt)
	assert.Empty(t, got.ID)
	assert.True(t, got.Legacy())
}

func TestFromEntry_Errors(t *testing.T) {
	_, err := FromEntry(nil)
	assert.Error(t, err)

	_, err = FromEntry(&feed.Entry{Action: feed.ActionTaskStarted})
	assert.Error(t, err)

	got, err := FromEntry(&feed.Entry{Action: feed.ActionTaskAssigned, Details: map[string]any{"kind": "launch_rockets", "task": "x"}})
	assert.Error(t, err)
	require.NotNil(t, got)
	assert.Equal(t, KindNone, got.Kind)
	assert.Equal(t, "x", got.Description)
}

func TestParsePriority(t *testing.T) {
	tests := map[string]Priority{
		"LOW":    PriorityLow,
		"medium": PriorityMedium,
		" High ": PriorityHigh,
		"":       PriorityMedium,
		"urgent": PriorityMedium,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParsePriority(in), in)
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.True(t, ValidID(a))
	assert.False(t, ValidID("not-an-id"))
	assert.Len(t, Kinds(), 6)
}
