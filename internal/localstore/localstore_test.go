package localstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"goalwidget/internal/widget"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

func TestSettingsRoundTrip(t *testing.T) {
	store := newStore(t)

	if got := store.Settings(); got != nil {
		t.Fatalf("settings before write = %v, want nil", got)
	}

	ws := widget.DefaultSettings()
	ws.Title = "Round Trip"
	ws.CurrentAmount = 120
	if err := store.SetSettings(ws); err != nil {
		t.Fatalf("set settings: %v", err)
	}

	got := store.Settings()
	if got == nil {
		t.Fatal("settings after write = nil")
	}
	if got.Title != "Round Trip" || got.CurrentAmount.Float() != 120 {
		t.Fatalf("settings = %+v", got)
	}
}

func TestDonationsRoundTrip(t *testing.T) {
	store := newStore(t)

	if got := store.Donations(); got != nil {
		t.Fatalf("donations before write = %v, want nil", got)
	}

	ds := []widget.Donation{
		{ID: "d1", Username: "ana", Amount: 10, Timestamp: 1700000000000},
		{ID: "d2", Username: "bruno", Amount: 25, Timestamp: 1700000001000},
	}
	if err := store.SetDonations(ds); err != nil {
		t.Fatalf("set donations: %v", err)
	}

	got := store.Donations()
	if len(got) != 2 || got[0].ID != "d1" || got[1].Amount != 25 {
		t.Fatalf("donations = %+v", got)
	}
}

func TestSetDonationsNilBecomesEmptyList(t *testing.T) {
	store := newStore(t)
	if err := store.SetDonations(nil); err != nil {
		t.Fatalf("set donations: %v", err)
	}
	raw, err := store.Load(KeyDonations)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(raw) != "[]" {
		t.Fatalf("stored = %s, want []", raw)
	}
}

func TestMalformedSlotFallsThrough(t *testing.T) {
	store := newStore(t)
	path := filepath.Join(store.Dir(), KeySettings+".json")
	if err := os.WriteFile(path, []byte("{corrupt"), 0o644); err != nil {
		t.Fatalf("seed corrupt slot: %v", err)
	}
	if got := store.Settings(); got != nil {
		t.Fatalf("settings = %v, want nil for a corrupt slot", got)
	}
}

func TestSessionIDRoundTrip(t *testing.T) {
	store := newStore(t)

	if _, err := store.SessionID(); err == nil {
		t.Fatal("expected error before any id is persisted")
	}
	if err := store.SetSessionID("session_1700000000000_abc"); err != nil {
		t.Fatalf("set session id: %v", err)
	}
	id, err := store.SessionID()
	if err != nil {
		t.Fatalf("session id: %v", err)
	}
	if id != "session_1700000000000_abc" {
		t.Fatalf("id = %q", id)
	}
}

func TestWrittenBySelf(t *testing.T) {
	store := newStore(t)
	if err := store.SetDonations([]widget.Donation{{ID: "d1", Amount: 5}}); err != nil {
		t.Fatalf("set donations: %v", err)
	}

	raw, err := store.Load(KeyDonations)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !store.WrittenBySelf(KeyDonations, raw) {
		t.Fatal("own write not recognized")
	}
	if store.WrittenBySelf(KeyDonations, []byte(`[{"id":"other"}]`)) {
		t.Fatal("foreign bytes claimed as own write")
	}
	if store.WrittenBySelf(KeySettings, raw) {
		t.Fatal("write attributed to a slot that was never written")
	}
}

func TestWatchSeesOtherViewWrites(t *testing.T) {
	dir := t.TempDir()
	watching, err := Open(dir)
	if err != nil {
		t.Fatalf("open watching store: %v", err)
	}
	other, err := Open(dir)
	if err != nil {
		t.Fatalf("open writing store: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	changes := map[string][]byte{}
	onChange := func(key string, raw []byte) {
		mu.Lock()
		changes[key] = raw
		mu.Unlock()
	}
	if err := watching.Watch(ctx, onChange, zerolog.Nop()); err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := other.SetSettings(widget.DefaultSettings()); err != nil {
		t.Fatalf("set settings: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		_, ok := changes[KeySettings]
		mu.Unlock()
		if ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("watch never reported the other view's write")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatchSuppressesOwnWrites(t *testing.T) {
	store := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var fired int
	onChange := func(string, []byte) {
		mu.Lock()
		fired++
		mu.Unlock()
	}
	if err := store.Watch(ctx, onChange, zerolog.Nop()); err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := store.SetSettings(widget.DefaultSettings()); err != nil {
		t.Fatalf("set settings: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired != 0 {
		t.Fatalf("own write echoed back %d times", fired)
	}
}
