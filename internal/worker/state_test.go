package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/agentfeed/pkg/cerr"
	"github.com/kazz187/agentfeed/pkg/storage"
)

func TestStateStore(t *testing.T) {
	dir := t.TempDir()
	local, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	store := NewStateStore(local, "worker_state.json")
	store.now = func() time.Time { return time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC) }
	ctx := context.Background()

	st, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Cursor())

	data, err := os.ReadFile(filepath.Join(dir, "worker_state.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_processed_timestamp":null,"last_save":"2026-05-06T07:08:09.000000+00:00"}`, string(data))

	cursor := "2026-01-01T00:00:00.000000+00:00"
	st.LastProcessedTimestamp = &cursor
	require.NoError(t, store.Save(ctx, st))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, cursor, loaded.Cursor())
}

func TestStateStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "worker_state.json"), []byte("{"), 0o644))
	local, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = NewStateStore(local, "worker_state.json").Load(context.Background())
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.DataLoss))
}

func TestStateStore_PeekDoesNotCreate(t *testing.T) {
	dir := t.TempDir()
	local, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	store := NewStateStore(local, "worker_state.json")

	st, err := store.Peek(context.Background())
	require.NoError(t, err)
	assert.Empty(t, st.Cursor())
	assert.NoFileExists(t, filepath.Join(dir, "worker_state.json"))
}
