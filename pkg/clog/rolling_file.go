package clog

import (
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewRollingFile returns a writer for the diagnostic log at path. It rotates while the
// process runs once the file would exceed maxSizeMB, keeping maxBackups old files beside it.
// The directory is created on first write.
func NewRollingFile(path string, maxSizeMB, maxBackups int) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
}
