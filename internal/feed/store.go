package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Ensure creates an empty feed file, and its parent directories, if absent.
func Ensure(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create feed directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create feed: %w", err)
	}
	return f.Close()
}

// Append writes entry as one compact JSON line with a single open-append-write-close.
// There is no locking and no fsync; concurrent writers rely on O_APPEND.
func Append(path string, entry *Entry) error {
	line, err := marshalLine(entry)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create feed directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open feed: %w", err)
	}
	if _, err := file.Write(line); err != nil {
		file.Close()
		return fmt.Errorf("failed to append to feed: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close feed: %w", err)
	}
	return nil
}

func marshalLine(entry *Entry) ([]byte, error) {
	if entry == nil {
		return nil, errors.New("nil feed entry")
	}
	out := *entry
	if out.Details == nil {
		out.Details = map[string]any{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encode terminates the value with exactly one '\n'; strings never carry a raw newline.
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("failed to marshal feed entry: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadTail returns the last n parseable entries in file order; n <= 0 returns all of them.
// Blank and malformed lines are skipped. A missing feed is created and read as empty.
func ReadTail(path string, n int) ([]*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*Entry{}, Ensure(path)
		}
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	lines := nonEmptyLines(data)
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return parseLines(lines), nil
}

// ReadAll is ReadTail without a limit.
func ReadAll(path string) ([]*Entry, error) {
	return ReadTail(path, 0)
}

// Snapshot is ReadAll for observers: a missing feed reads as empty and is left missing.
func Snapshot(path string) ([]*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	return parseLines(nonEmptyLines(data)), nil
}

func nonEmptyLines(data []byte) [][]byte {
	var lines [][]byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func parseLines(lines [][]byte) []*Entry {
	entries := make([]*Entry, 0, len(lines))
	for _, line := range lines {
		if entry, ok := parseLine(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func parseLine(line []byte) (*Entry, bool) {
	var entry Entry
	if err := json.Unmarshal(line, &entry); err != nil {
		return nil, false
	}
	return &entry, true
}
