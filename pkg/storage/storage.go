package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested key does not exist in storage.
var ErrNotFound = errors.New("not found")

// Storage holds small whole-object blobs such as the worker state file.
// Writes replace the object as a unit; readers never observe a partial write.
type Storage interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Exists(ctx context.Context, key string) (bool, error)
}
