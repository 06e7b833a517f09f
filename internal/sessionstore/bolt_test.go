package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newBolt(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open bolt store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltStoreRoundTrip(t *testing.T) {
	store := newBolt(t)
	ctx := context.Background()

	id, _, err := store.Create(ctx, Data{
		Settings:  json.RawMessage(`{"title":"Goal"}`),
		Donations: json.RawMessage(`[{"id":"d1"}]`),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.Settings) != `{"title":"Goal"}` {
		t.Fatalf("settings = %s", got.Settings)
	}
	if string(got.Donations) != `[{"id":"d1"}]` {
		t.Fatalf("donations = %s", got.Donations)
	}

	if _, err := store.Put(ctx, id, Data{Settings: json.RawMessage(`{"title":"Renamed"}`)}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, _ = store.Get(ctx, id)
	if string(got.Settings) != `{"title":"Renamed"}` {
		t.Fatalf("settings after put = %s", got.Settings)
	}
}

func TestBoltStoreMissing(t *testing.T) {
	store := newBolt(t)
	if _, err := store.Get(context.Background(), "session_0_nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestBoltStoreDeleteExpired(t *testing.T) {
	store := newBolt(t)
	ctx := context.Background()

	staleID := "session_1_stale"
	stale := Data{LastUpdated: time.Now().Add(-48 * time.Hour).UnixMilli()}
	if err := store.write(staleID, stale); err != nil {
		t.Fatalf("seed stale: %v", err)
	}
	freshID, _, err := store.Create(ctx, Data{})
	if err != nil {
		t.Fatalf("create fresh: %v", err)
	}

	removed, err := store.DeleteExpired(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := store.Get(ctx, staleID); !errors.Is(err, ErrNotFound) {
		t.Fatal("stale session survived the sweep")
	}
	if _, err := store.Get(ctx, freshID); err != nil {
		t.Fatalf("fresh session swept: %v", err)
	}
}
