package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "docs", "agent-feed.jsonl")
}

func appendRaw(t *testing.T, path, raw string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(raw)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestEnsure_Idempotent(t *testing.T) {
	path := feedPath(t)
	require.NoError(t, Ensure(path))
	appendRaw(t, path, "keep\n")
	require.NoError(t, Ensure(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep\n", string(data))
}

func TestAppend_OneCompactLine(t *testing.T) {
	path := feedPath(t)
	entry := &Entry{
		Timestamp: "2026-01-01T00:00:00.000000+00:00",
		Agent:     "DC",
		Action:    ActionTaskAssigned,
		Details:   map[string]any{"task": "line one\nline two <b>"},
	}
	require.NoError(t, Append(path, entry))
	require.NoError(t, Append(path, &Entry{Timestamp: "2026-01-01T00:00:01.000000+00:00", Agent: "JC", Action: ActionStatusUpdate}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"timestamp":"2026-01-01T00:00:00.000000+00:00","agent":"DC","action":"task_assigned","details":{"task":"line one\nline two <b>"}}`, lines[0])
	assert.Contains(t, lines[1], `"details":{}`)
}

func TestAppend_NilEntry(t *testing.T) {
	assert.Error(t, Append(feedPath(t), nil))
}

func TestReadTail(t *testing.T) {
	path := feedPath(t)
	require.NoError(t, Ensure(path))
	appendRaw(t, path, `{"timestamp":"t1","agent":"DC","action":"a1","details":{}}`+"\n")
	appendRaw(t, path, "not json\n\n")
	appendRaw(t, path, `{"timestamp":"t2","agent":"DC","action":"a2","details":{}}`+"\n")
	appendRaw(t, path, `{"timestamp":"t3","agent":"JC","action":"a3","details":{"k":1}}`+"\n")
	appendRaw(t, path, `{"timestamp":"t4","agent":"JC","action":`)

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{name: "all", n: 0, want: []string{"t1", "t2", "t3"}},
		{name: "negative means all", n: -1, want: []string{"t1", "t2", "t3"}},
		{name: "last two lines", n: 2, want: []string{"t3"}},
		{name: "last three lines", n: 3, want: []string{"t2", "t3"}},
		{name: "more than available", n: 50, want: []string{"t1", "t2", "t3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ReadTail(path, tt.n)
			require.NoError(t, err)
			got := make([]string, 0, len(entries))
			for _, e := range entries {
				got = append(got, e.Timestamp)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadAll_MissingFileIsEmptyAndCreated(t *testing.T) {
	path := feedPath(t)
	entries, err := ReadAll(path)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.FileExists(t, path)
}

func TestSnapshot(t *testing.T) {
	path := feedPath(t)
	entries, err := Snapshot(path)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoFileExists(t, path)

	appendRaw(t, path, lineA+"\nnot json\n"+lineB+"\n")
	entries, err = Snapshot(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "t1", entries[0].Timestamp)
	assert.Equal(t, "t2", entries[1].Timestamp)
}

func TestReadAll_RoundTripsWriterEntries(t *testing.T) {
	path := feedPath(t)
	now := time.Date(2026, 3, 4, 5, 6, 7, 123456000, time.UTC)
	w := NewWriter(path, "DC", WithClock(func() time.Time { return now }))

	_, err := w.AssignTask(Assignment{Task: "Create file x.txt", FilesToCreate: []string{"x.txt"}, TaskID: "01J0"})
	require.NoError(t, err)

	entries, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "2026-03-04T05:06:07.123456+00:00", e.Timestamp)
	assert.Equal(t, "DC", e.Agent)
	assert.Equal(t, ActionTaskAssigned, e.Action)
	assert.Equal(t, "MEDIUM", e.Detail("priority"))
	assert.Equal(t, []string{"x.txt"}, e.DetailStrings("files_to_create"))
	assert.Equal(t, "01J0", e.Detail("task_id"))
	assert.NotContains(t, e.Details, "notes")
}
