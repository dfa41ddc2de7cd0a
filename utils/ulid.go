package utils

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyLock sync.Mutex
	entropy     = ulid.Monotonic(ulid.DefaultEntropy(), 0)
)

// NewStatementID returns a monotonically increasing ULID string used to
// correlate a statement's log lines.
func NewStatementID() string {
	return NewStatementIDAt(time.Now()).String()
}

// NewStatementIDAt generates a ULID for the given time.
func NewStatementIDAt(t time.Time) ulid.ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()

	return ulid.MustNew(ulid.Timestamp(t), entropy)
}

// ParseStatementID parses a statement id produced by NewStatementID.
func ParseStatementID(s string) (ulid.ULID, error) {
	return ulid.ParseStrict(s)
}
