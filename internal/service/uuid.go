package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Client-supplied entry ids are checked against these.
var (
	ErrInvalidUUID     = errors.New("invalid UUID format")
	ErrNotUUIDv7       = errors.New("UUID must be version 7")
	ErrFutureTimestamp = errors.New("UUID timestamp is too far in the future")
)

// maxClockSkew is how far ahead of the server clock a client id may be stamped.
const maxClockSkew = time.Minute

// NewID returns a time-ordered UUIDv7 string.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ValidateUUIDv7 accepts an offline-generated entry id only if it is a v7
// UUID stamped no later than now plus maxClockSkew.
func ValidateUUIDv7(id string, now time.Time) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUUID, err)
	}
	if v := parsed.Version(); v != 7 {
		return fmt.Errorf("%w: got version %d", ErrNotUUIDv7, v)
	}
	if stamped := v7Time(parsed); stamped.After(now.Add(maxClockSkew)) {
		return fmt.Errorf("%w: stamped %s", ErrFutureTimestamp, stamped.UTC().Format(time.RFC3339))
	}
	return nil
}

// ParseID rejects path ids that are not UUIDs of any version.
func ParseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUUID, err)
	}
	return nil
}

// ExtractUUIDv7Timestamp returns the creation time embedded in id, or the
// zero time when id does not parse.
func ExtractUUIDv7Timestamp(id string) time.Time {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return time.Time{}
	}
	return v7Time(parsed)
}

func v7Time(id uuid.UUID) time.Time {
	return time.Unix(id.Time().UnixTime())
}

// newDeviceID returns 16 random bytes hex-encoded.
func newDeviceID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
