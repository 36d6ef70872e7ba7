package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/agentfeed/internal/config"
)

func TestPending_LeavesFeedAndStateUntouched(t *testing.T) {
	dir := t.TempDir()
	env := &config.Env{}
	env.AgentID = "JC"
	env.LogLevel = "error"
	env.FeedEnv.Path = filepath.Join(dir, "docs", "agent-feed.jsonl")
	env.AuthorizedAssigner = []string{"DC"}
	env.StorageEnv.Type = "local"
	env.BaseDir = filepath.Join(dir, "state")
	env.StateKey = "worker_state.json"

	require.NoError(t, pending(env))

	assert.NoFileExists(t, env.FeedEnv.Path)
	assert.NoFileExists(t, filepath.Join(env.BaseDir, env.StateKey))
}
