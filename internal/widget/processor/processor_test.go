package processor

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"goalwidget/internal/widget"
)

func newTestProcessor(initial widget.State) (*Processor, *[]struct{ old, new float64 }) {
	transitions := &[]struct{ old, new float64 }{}
	p := New(initial, func(old, new float64, _ widget.State) {
		*transitions = append(*transitions, struct{ old, new float64 }{old, new})
	}, nil, zerolog.Nop())
	return p, transitions
}

func TestProcessRejectsInvalidAmounts(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
	}{
		{name: "zero", amount: 0},
		{name: "negative", amount: -10},
		{name: "nan", amount: math.NaN()},
		{name: "positive infinity", amount: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initial := widget.State{Settings: widget.DefaultSettings()}
			initial.Settings.CurrentAmount = 100
			p, transitions := newTestProcessor(initial)

			p.Process(tt.amount, "someone", "hi")

			snap := p.Snapshot()
			if got := snap.Settings.CurrentAmount.Float(); got != 100 {
				t.Fatalf("currentAmount changed: got %v want 100", got)
			}
			if len(snap.Donations) != 0 {
				t.Fatalf("history changed: %d entries", len(snap.Donations))
			}
			if len(*transitions) != 0 {
				t.Fatalf("unexpected transitions: %v", *transitions)
			}
		})
	}
}

func TestProcessAccumulatesAndBoundsHistory(t *testing.T) {
	p, _ := newTestProcessor(widget.State{Settings: widget.DefaultSettings()})

	total := 0.0
	for i := 1; i <= 15; i++ {
		p.Process(float64(i), "donor", "")
		total += float64(i)
	}

	snap := p.Snapshot()
	if got := snap.Settings.CurrentAmount.Float(); got != total {
		t.Fatalf("currentAmount = %v, want %v", got, total)
	}
	if len(snap.Donations) != HistoryLimit {
		t.Fatalf("history length = %d, want %d", len(snap.Donations), HistoryLimit)
	}
	// Newest first: the last processed amount leads.
	if snap.Donations[0].Amount != 15 {
		t.Fatalf("newest entry amount = %v, want 15", snap.Donations[0].Amount)
	}
	if snap.Donations[HistoryLimit-1].Amount != 6 {
		t.Fatalf("oldest retained amount = %v, want 6", snap.Donations[HistoryLimit-1].Amount)
	}
}

func TestProcessGoalCrossingScenario(t *testing.T) {
	initial := widget.State{Settings: widget.DefaultSettings()}
	initial.Settings.CurrentAmount = 450
	initial.Settings.GoalAmount = 500
	p, transitions := newTestProcessor(initial)

	p.Process(50, "Neko", "go!")

	snap := p.Snapshot()
	if got := snap.Settings.CurrentAmount.Float(); got != 500 {
		t.Fatalf("currentAmount = %v, want 500", got)
	}
	if len(snap.Donations) != 1 || snap.Donations[0].Amount != 50 {
		t.Fatalf("history = %+v, want one entry of 50", snap.Donations)
	}
	if snap.Donations[0].Username != "Neko" || snap.Donations[0].Message != "go!" {
		t.Fatalf("donation fields = %+v", snap.Donations[0])
	}
	if snap.Donations[0].ID == "" || snap.Donations[0].Timestamp == 0 {
		t.Fatalf("donation missing id or timestamp: %+v", snap.Donations[0])
	}
	if len(*transitions) != 1 || (*transitions)[0].old != 450 || (*transitions)[0].new != 500 {
		t.Fatalf("transitions = %v, want one 450->500", *transitions)
	}
}

func TestResetClearsProgress(t *testing.T) {
	initial := widget.State{Settings: widget.DefaultSettings()}
	initial.Settings.CurrentAmount = 990
	initial.Donations = widget.SeedDonations()
	p, transitions := newTestProcessor(initial)

	p.Reset()

	snap := p.Snapshot()
	if snap.Settings.CurrentAmount.Float() != 0 {
		t.Fatalf("currentAmount = %v after reset", snap.Settings.CurrentAmount.Float())
	}
	if len(snap.Donations) != 0 {
		t.Fatalf("history not cleared: %d entries", len(snap.Donations))
	}
	if len(*transitions) != 0 {
		t.Fatalf("reset must not report a transition: %v", *transitions)
	}
}

func TestReplaceReportsTransition(t *testing.T) {
	initial := widget.State{Settings: widget.DefaultSettings()}
	initial.Settings.CurrentAmount = 100
	p, transitions := newTestProcessor(initial)

	next := widget.State{Settings: widget.DefaultSettings()}
	next.Settings.CurrentAmount = 150
	p.Replace(next, false)

	if len(*transitions) != 1 || (*transitions)[0].old != 100 || (*transitions)[0].new != 150 {
		t.Fatalf("transitions = %v, want one 100->150", *transitions)
	}
	if got := p.Snapshot().Settings.CurrentAmount.Float(); got != 150 {
		t.Fatalf("currentAmount = %v, want 150", got)
	}
}

func TestReplacePersistFlag(t *testing.T) {
	persisted := 0
	p := New(widget.State{Settings: widget.DefaultSettings()}, nil, func(widget.State) { persisted++ }, zerolog.Nop())

	p.Replace(widget.State{Settings: widget.DefaultSettings()}, false)
	if persisted != 0 {
		t.Fatalf("synced replace must not persist, got %d calls", persisted)
	}
	p.Replace(widget.State{Settings: widget.DefaultSettings()}, true)
	if persisted != 1 {
		t.Fatalf("persist calls = %d, want 1", persisted)
	}
}

func TestUpdateSettingsPreservesProgress(t *testing.T) {
	initial := widget.State{Settings: widget.DefaultSettings()}
	initial.Settings.CurrentAmount = 275
	p, _ := newTestProcessor(initial)

	p.UpdateSettings(func(s *widget.WidgetSettings) {
		s.GoalAmount = 1000
		s.CurrentAmount = 0 // an editor form must not be able to roll this back
	})

	snap := p.Snapshot()
	if got := snap.Settings.GoalAmount.Float(); got != 1000 {
		t.Fatalf("goalAmount = %v, want 1000", got)
	}
	if got := snap.Settings.CurrentAmount.Float(); got != 275 {
		t.Fatalf("currentAmount = %v, want 275", got)
	}
}

func TestProcessNormalizesUsername(t *testing.T) {
	p, _ := newTestProcessor(widget.State{Settings: widget.DefaultSettings()})

	// "e" + combining acute accent normalizes to the precomposed rune.
	p.Process(10, "  Néko  ", "")

	snap := p.Snapshot()
	if got := snap.Donations[0].Username; got != "Néko" {
		t.Fatalf("username = %q, want %q", got, "Néko")
	}
}

func TestPersistFollowsMutationOrder(t *testing.T) {
	var mu sync.Mutex
	var persisted []float64
	entered := make(chan struct{})
	release := make(chan struct{})

	p := New(widget.State{Settings: widget.DefaultSettings()}, nil, func(s widget.State) {
		mu.Lock()
		nth := len(persisted)
		persisted = append(persisted, s.Settings.CurrentAmount.Float())
		mu.Unlock()
		if nth == 0 {
			// Stall the first persist until the second donation is
			// already waiting behind it.
			close(entered)
			<-release
		}
	}, zerolog.Nop())

	done := make(chan struct{}, 2)
	go func() {
		p.Process(50, "ana", "")
		done <- struct{}{}
	}()
	<-entered
	go func() {
		p.Process(70, "bruno", "")
		done <- struct{}{}
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	<-done
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(persisted) != 2 || persisted[0] != 50 || persisted[1] != 120 {
		t.Fatalf("persisted totals = %v, want [50 120]", persisted)
	}
}
