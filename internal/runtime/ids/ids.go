// Package ids generates the identifiers used on the wire: UUIDs for object
// ids and time-sortable ULIDs for correlation tokens.
package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewCorrelationToken returns a 26-character ULID. Tokens are allocated by
// the event factory only, never chosen by callers, so collisions within an
// agent cannot occur.
func NewCorrelationToken() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return id.String()
}

// NewObjectID returns a fresh random UUID for a domain object.
func NewObjectID() uuid.UUID {
	return uuid.New()
}

// NewMessageID returns a ULID for a transport message envelope.
func NewMessageID() string {
	return NewCorrelationToken()
}
