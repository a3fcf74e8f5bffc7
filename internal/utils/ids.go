package utils

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a random UUID string used as a record identifier
func NewID() string {
	return uuid.NewString()
}

// Now returns the current wall-clock time in UTC; it serialises as ISO-8601
func Now() time.Time {
	return time.Now().UTC()
}
