package task

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID mints a correlation id for an assignment.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// ValidID reports whether s looks like an id minted by NewID.
func ValidID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
