// Package identity mints and resolves the stable session identifier a
// view carries. The id format is shared with existing overlays, so it
// stays `session_<millis>_<base36>` rather than a UUID.
package identity

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// NewID mints a session identifier.
func NewID() string {
	return "session_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + strconv.FormatUint(rand.Uint64(), 36)
}

// Valid reports whether id plausibly came from NewID. The service does
// not enforce this (ids are opaque to it); views use it to discard
// corrupted persisted ids instead of polling a garbage key forever.
func Valid(id string) bool {
	if !strings.HasPrefix(id, "session_") {
		return false
	}
	rest := strings.TrimPrefix(id, "session_")
	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	if _, err := strconv.ParseInt(parts[0], 10, 64); err != nil {
		return false
	}
	return true
}

// PersistedIDStore abstracts where the resolver keeps the id; the local
// view store satisfies it.
type PersistedIDStore interface {
	SessionID() (string, error)
	SetSessionID(id string) error
}

// Resolve returns the persisted session id when one exists and is
// well-formed, otherwise mints a new one and persists it. A store write
// failure is not fatal: the minted id is still usable for this run.
func Resolve(store PersistedIDStore) (string, error) {
	id, err := store.SessionID()
	if err == nil && Valid(id) {
		return id, nil
	}
	id = NewID()
	if err := store.SetSessionID(id); err != nil {
		return id, err
	}
	return id, nil
}
