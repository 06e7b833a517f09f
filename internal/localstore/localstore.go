// Package localstore is the per-machine persistent store a view mirrors
// its state into: one JSON file per key under a state directory. Other
// views on the same machine observe writes through a filesystem watch,
// which stands in for the browser storage-change notification the
// overlay model assumes.
package localstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"goalwidget/internal/widget"
)

// Store keys. The names are shared with existing overlays.
const (
	KeySettings  = "kawaii-widget-settings"
	KeyDonations = "kawaii-widget-donations"
	keySessionID = "kawaii-widget-session-id"
)

// Store reads and writes whole-value slots under a directory. Values
// are opaque blobs to the store; no partial updates exist.
type Store struct {
	dir string

	mu        sync.Mutex
	lastWrite map[string][]byte
}

// Open ensures the state directory exists.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir, lastWrite: make(map[string][]byte)}, nil
}

// Dir returns the state directory path.
func (s *Store) Dir() string { return s.dir }

// Settings returns the persisted settings snapshot, or nil when the key
// is absent or unreadable (malformed data falls through to the next
// resolution tier, it is never an error the caller must handle).
func (s *Store) Settings() *widget.WidgetSettings {
	var ws widget.WidgetSettings
	if !s.readJSON(KeySettings, &ws) {
		return nil
	}
	return &ws
}

// SetSettings persists the settings snapshot.
func (s *Store) SetSettings(ws widget.WidgetSettings) error {
	return s.writeJSON(KeySettings, ws)
}

// Donations returns the persisted history, or nil when absent or
// unreadable.
func (s *Store) Donations() []widget.Donation {
	var ds []widget.Donation
	if !s.readJSON(KeyDonations, &ds) {
		return nil
	}
	return ds
}

// SetDonations persists the donation history.
func (s *Store) SetDonations(ds []widget.Donation) error {
	if ds == nil {
		ds = []widget.Donation{}
	}
	return s.writeJSON(KeyDonations, ds)
}

// SessionID returns the persisted session identifier.
func (s *Store) SessionID() (string, error) {
	raw, err := os.ReadFile(s.path(keySessionID))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// SetSessionID persists the session identifier.
func (s *Store) SetSessionID(id string) error {
	return s.write(keySessionID, []byte(id))
}

// Load reads a raw slot value; used by the watcher merge path.
func (s *Store) Load(key string) ([]byte, error) {
	raw, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return raw, err
}

// WrittenBySelf reports whether raw is byte-identical to this store's
// own last write for key. The filesystem watch fires for our writes as
// much as for other views'; echoing those back into the processor would
// be wasted work (though harmless, given the strict-increase trigger
// guard).
func (s *Store) WrittenBySelf(key string, raw []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastWrite[key]
	return ok && bytes.Equal(last, raw)
}

func (s *Store) readJSON(key string, v any) bool {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func (s *Store) writeJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.write(key, raw)
}

// write replaces the slot atomically so a concurrent reader never sees
// a torn value.
func (s *Store) write(key string, raw []byte) error {
	s.mu.Lock()
	s.lastWrite[key] = append([]byte(nil), raw...)
	s.mu.Unlock()

	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// keyForPath maps a watched file back to its slot key.
func keyForPath(p string) (string, bool) {
	name := strings.TrimSuffix(filepath.Base(p), ".json")
	switch name {
	case KeySettings, KeyDonations:
		return name, true
	}
	return "", false
}
