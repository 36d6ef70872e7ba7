package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_ReadWrite(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Read(ctx, "state/worker.json")
	require.ErrorIs(t, err, ErrNotFound)

	ok, err := s.Exists(ctx, "state/worker.json")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, "state/worker.json", []byte(`{"a":1}`)))
	require.NoError(t, s.Write(ctx, "state/worker.json", []byte(`{"a":2}`)))

	data, err := s.Read(ctx, "state/worker.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(data))

	ok, err = s.Exists(ctx, "state/worker.json")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = os.Stat(s.Path("state/worker.json") + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not be left behind")
}

func TestLocalStorage_KeyCannotEscapeBaseDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(dir, "base"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "base", "escape.json"), s.Path("../../escape.json"))
}
