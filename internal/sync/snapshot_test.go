package sync

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"reflect"
	"testing"

	"goalwidget/internal/widget"
)

func sampleState() widget.State {
	s := widget.DefaultSettings()
	s.CurrentAmount = 230
	s.TrailRewards = []widget.TrailReward{{ID: "t1", Amount: 100, Label: "Sticker"}}
	return widget.State{
		Settings: s,
		Donations: []widget.Donation{
			{ID: "d1", Username: "Neko", Amount: 30, Message: "hi", Timestamp: 1700000000000},
			{ID: "d2", Username: "Mario", Amount: 200, Timestamp: 1700000001000},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	state := sampleState()
	encoded, err := EncodeSnapshot(state)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeSnapshot(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(*decoded, state) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", *decoded, state)
	}
}

func TestDecodeSnapshotAcceptsStdBase64(t *testing.T) {
	raw, err := json.Marshal(sampleState())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	decoded, err := DecodeSnapshot(encoded)
	if err != nil {
		t.Fatalf("decode std base64: %v", err)
	}
	if decoded.Settings.CurrentAmount.Float() != 230 {
		t.Fatalf("currentAmount = %v", decoded.Settings.CurrentAmount.Float())
	}
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	if _, err := DecodeSnapshot("%%%not-base64%%%"); err == nil {
		t.Fatal("expected error for non-base64 input")
	}
	garbage := base64.RawURLEncoding.EncodeToString([]byte("not json"))
	if _, err := DecodeSnapshot(garbage); err == nil {
		t.Fatal("expected error for non-JSON payload")
	}
}

func TestLaunchURLCarriesAllParameters(t *testing.T) {
	state := sampleState()
	launch, err := LaunchURL("http://localhost:5173/", "session_123_abc", state)
	if err != nil {
		t.Fatalf("launch url: %v", err)
	}
	u, err := url.Parse(launch)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get(ParamOverlay) != "true" {
		t.Fatalf("overlay param = %q", q.Get(ParamOverlay))
	}
	if q.Get(ParamSession) != "session_123_abc" {
		t.Fatalf("session param = %q", q.Get(ParamSession))
	}
	decoded, err := DecodeSnapshot(q.Get(ParamSnapshot))
	if err != nil {
		t.Fatalf("decode embedded snapshot: %v", err)
	}
	if decoded.Settings.CurrentAmount.Float() != 230 {
		t.Fatalf("embedded currentAmount = %v", decoded.Settings.CurrentAmount.Float())
	}
}
