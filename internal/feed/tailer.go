package feed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Tailer reads entries appended after its cursor. It never replays what was in the
// file when it was created and never consumes a line until its newline is written.
type Tailer struct {
	path string
	pos  int64
}

// NewTailer returns a Tailer positioned at the current end of the feed.
func NewTailer(path string) (*Tailer, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Tailer{path: path}, nil
		}
		return nil, fmt.Errorf("failed to stat feed: %w", err)
	}
	return &Tailer{path: path, pos: info.Size()}, nil
}

// NewTailerAt resumes from a byte offset obtained from Position.
func NewTailerAt(path string, pos int64) *Tailer {
	return &Tailer{path: path, pos: max(pos, 0)}
}

func (t *Tailer) Path() string { return t.path }

// Position is the byte offset just past the last consumed newline.
func (t *Tailer) Position() int64 { return t.pos }

// Poll returns the complete entries appended since the previous call, skipping malformed lines.
// If the file is now shorter than the cursor it has been replaced or truncated and reading restarts at 0.
func (t *Tailer) Poll() ([]*Entry, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.pos = 0
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open feed: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat feed: %w", err)
	}
	if info.Size() < t.pos {
		t.pos = 0
	}
	if info.Size() == t.pos {
		return nil, nil
	}

	if _, err := f.Seek(t.pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek feed: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(f, info.Size()-t.pos))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		// Only a partial line so far.
		return nil, nil
	}
	t.pos += int64(end + 1)
	return parseLines(nonEmptyLines(data[:end+1])), nil
}
