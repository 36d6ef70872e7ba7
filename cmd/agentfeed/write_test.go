package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/agentfeed/internal/config"
	"github.com/kazz187/agentfeed/internal/feed"
)

func TestParseDetails(t *testing.T) {
	details, err := parseDetails([]string{
		"task=fix the parser",
		"line=42",
		"needs_dc_input=true",
		`files=["a.go","b.go"]`,
		`quoted="7"`,
		"expr=a=b",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"task":           "fix the parser",
		"line":           float64(42),
		"needs_dc_input": true,
		"files":          []any{"a.go", "b.go"},
		"quoted":         "7",
		"expr":           "a=b",
	}, details)

	for _, bad := range []string{"novalue", "=x"} {
		_, err := parseDetails([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestLogEntry(t *testing.T) {
	env := &config.Env{}
	env.AgentID = "KC"
	env.FeedEnv.Path = filepath.Join(t.TempDir(), "docs", "agent-feed.jsonl")

	require.NoError(t, logEntry(env, feed.ActionStatusUpdate, []string{"status=idle"}))

	entries, err := feed.ReadAll(env.FeedEnv.Path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "KC", entries[0].Agent)
	assert.Equal(t, feed.ActionStatusUpdate, entries[0].Action)
	assert.Equal(t, "idle", entries[0].Detail("status"))
}

func TestKindNames(t *testing.T) {
	assert.Contains(t, kindNames(), "create_file")
	assert.Contains(t, kindNames(), "run_tests")
}
