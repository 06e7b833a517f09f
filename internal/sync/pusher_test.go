package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	stdsync "sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"goalwidget/internal/widget"
)

func stateWithTotal(total float64) widget.State {
	state := widget.State{Settings: widget.DefaultSettings()}
	state.Settings.CurrentAmount = widget.FlexFloat(total)
	return state
}

func TestPusherCoalescesToNewest(t *testing.T) {
	p := NewPusher(nil, "session_1_test", zerolog.Nop())
	for _, total := range []float64{50, 70, 120} {
		p.Enqueue(stateWithTotal(total))
	}

	select {
	case state := <-p.queue:
		if got := state.Settings.CurrentAmount.Float(); got != 120 {
			t.Fatalf("queued total = %v, want the newest", got)
		}
	default:
		t.Fatal("queue empty after enqueues")
	}
	select {
	case <-p.queue:
		t.Fatal("more than one snapshot queued")
	default:
	}
}

func TestPusherNeverRegressesRemoteTotal(t *testing.T) {
	var mu stdsync.Mutex
	var totals []float64
	firstArrived := make(chan struct{})
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var state widget.State
		_ = json.NewDecoder(r.Body).Decode(&state)
		mu.Lock()
		nth := len(totals)
		totals = append(totals, state.Settings.CurrentAmount.Float())
		mu.Unlock()
		if nth == 0 {
			// Hold the first PUT open until a newer snapshot is queued.
			close(firstArrived)
			<-release
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": state})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(ClientOptions{BaseURL: srv.URL, Logger: zerolog.Nop()})
	p := NewPusher(client, "session_1_test", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.Enqueue(stateWithTotal(50))
	<-firstArrived
	p.Enqueue(stateWithTotal(120))
	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		got := append([]float64(nil), totals...)
		mu.Unlock()
		if len(got) == 2 {
			if got[0] != 50 || got[1] != 120 {
				t.Fatalf("push order = %v, the stored total regressed", got)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("pushes seen = %v, want two in order", got)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
