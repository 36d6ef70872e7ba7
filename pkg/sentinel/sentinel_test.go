package sentinel

import (
	"bytes"
	"context"
	"crypto/sha256"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "testfile")
	content := []byte("hello world")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	got, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, sha256.Sum256(content), got)

	other := filepath.Join(dir, "other")
	require.NoError(t, os.WriteFile(other, []byte("content B"), 0o644))
	otherHash, err := HashFile(other)
	require.NoError(t, err)
	assert.NotEqual(t, got, otherHash)

	_, err = HashFile(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestBackoffProgression(t *testing.T) {
	s := &Sentinel{backoff: InitialBackoff, logger: discardLogger()}

	// 5s -> 10s -> 20s -> 40s -> 80s -> 160s -> 320s -> 600s
	expected := []time.Duration{
		10 * time.Second,
		20 * time.Second,
		40 * time.Second,
		80 * time.Second,
		160 * time.Second,
		320 * time.Second,
		MaxBackoff,
		MaxBackoff,
	}
	for i, want := range expected {
		s.increaseBackoff()
		assert.Equal(t, want, s.backoff, "step %d", i+1)
	}
}

func TestSleepBackoffInterruptible(t *testing.T) {
	s := &Sentinel{backoff: 10 * time.Second, logger: discardLogger()}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	s.sleepBackoff(ctx)
	assert.Less(t, time.Since(start), time.Second)
}

func TestStopChild_NilCmd(t *testing.T) {
	s := &Sentinel{logger: discardLogger()}
	assert.NotPanics(t, func() { s.stopChild(nil) })
}

func TestRun_StopsChildOnCancel(t *testing.T) {
	sh, err := os.Stat("/bin/sh")
	if err != nil || sh.IsDir() {
		t.Skip("/bin/sh not available")
	}

	var out bytes.Buffer
	s, err := New(Config{
		BinaryPath: "/bin/sh",
		Args:       []string{"-c", "echo started; exec sleep 30"},
		Stdout:     &syncWriter{buf: &out},
		Logger:     discardLogger(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(300 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sentinel did not stop after cancellation")
	}
}

type syncWriter struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}
