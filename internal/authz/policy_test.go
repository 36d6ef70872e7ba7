package authz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/agentfeed/internal/feed"
)

func assigned(agent, assignedBy string) *feed.Entry {
	details := map[string]any{"task": "Create file x.txt"}
	if assignedBy != "" {
		details["assigned_by"] = assignedBy
	}
	return &feed.Entry{Agent: agent, Action: feed.ActionTaskAssigned, Details: details}
}

func TestPolicy_IsAuthorized(t *testing.T) {
	p := New("DC", " ", "")

	tests := []struct {
		name  string
		entry *feed.Entry
		want  bool
	}{
		{name: "agent matches", entry: assigned("DC", ""), want: true},
		{name: "assigned_by matches", entry: assigned("DiscordBot", "DC"), want: true},
		{name: "unknown agent", entry: assigned("RandomUser", ""), want: false},
		{name: "case sensitive", entry: assigned("dc", ""), want: false},
		{name: "no partial match", entry: assigned("DC BOT", ""), want: false},
		{name: "assigned_by not a string", entry: &feed.Entry{Agent: "X", Details: map[string]any{"assigned_by": 1}}, want: false},
		{name: "nil entry", entry: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsAuthorized(tt.entry))
		})
	}
	assert.Equal(t, []string{"DC"}, p.Identities())
}

func TestPolicy_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assigners.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
assigners:
  - name: Stryk
    ids: ["Stryk#8167", "1390653822535340162", lordcain]
  - name: DC
    ids: ["DC BOT"]
`), 0o644))

	p := New("DC")
	require.NoError(t, p.LoadFile(path))

	id, name, ok := p.Assigner(assigned("bridge", "1390653822535340162"))
	require.True(t, ok)
	assert.Equal(t, "1390653822535340162", id)
	assert.Equal(t, "Stryk", name)

	assert.True(t, p.IsAuthorized(assigned("DC BOT", "")))
	assert.True(t, p.IsAuthorized(assigned("Stryk", "")))
	assert.False(t, p.IsAuthorized(assigned("RandomUser", "")))
}

func TestPolicy_LoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	p := New()

	assert.Error(t, p.LoadFile(filepath.Join(dir, "missing.yaml")))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("assigners: [\n"), 0o644))
	assert.Error(t, p.LoadFile(bad))

	unnamed := filepath.Join(dir, "unnamed.yaml")
	require.NoError(t, os.WriteFile(unnamed, []byte("assigners:\n  - ids: [x]\n"), 0o644))
	assert.Error(t, p.LoadFile(unnamed))
}
