// Package sessionstore holds the keyed `{settings, donations}` blobs
// that bridge editor and overlay processes. The store is deliberately
// dumb: whole-value get/put, last write wins, no knowledge of the
// payload schema.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a session id has no stored data (or the
// data expired; callers cannot tell the difference, by design).
var ErrNotFound = errors.New("session not found")

// Data is one stored session blob. Settings and donations stay raw so
// the service never constrains what views persist. LastUpdated is
// milliseconds since epoch, matching the wire format views expect.
type Data struct {
	Settings    json.RawMessage `json:"settings"`
	Donations   json.RawMessage `json:"donations"`
	LastUpdated int64           `json:"lastUpdated"`
}

// Normalize fills empty blobs so clients always get valid JSON back.
func (d *Data) Normalize(now time.Time) {
	if len(d.Settings) == 0 {
		d.Settings = json.RawMessage(`{}`)
	}
	if len(d.Donations) == 0 {
		d.Donations = json.RawMessage(`[]`)
	}
	d.LastUpdated = now.UnixMilli()
}

// Store is the persistence contract of the session service. Backends
// are injected; there is no package-level singleton.
type Store interface {
	// Create stores data under a freshly minted id and returns both.
	Create(ctx context.Context, data Data) (string, Data, error)
	// Get returns the blob for id, or ErrNotFound.
	Get(ctx context.Context, id string) (Data, error)
	// Put overwrites the blob for id unconditionally.
	Put(ctx context.Context, id string, data Data) (Data, error)
	// DeleteExpired removes sessions last updated before cutoff and
	// reports how many were dropped.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}
