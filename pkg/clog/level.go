package clog

import "log/slog"

// ParseLevel converts a level name such as "debug" or "WARN" to a slog.Level.
// Unrecognised names fall back to info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
