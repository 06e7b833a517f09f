// Package processor is the single funnel every donation source feeds
// into. It owns the view's state, validates untrusted amounts, keeps the
// bounded history and running total, and reports every amount transition
// to an observer so the trigger engine reacts to local and synced
// changes alike.
package processor

import (
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"goalwidget/internal/widget"
)

// HistoryLimit caps the donation history; older entries are evicted
// silently.
const HistoryLimit = 10

// ChangeFunc observes a currentAmount transition. The state passed in is
// a snapshot taken under the same critical section as the transition.
type ChangeFunc func(old, new float64, state widget.State)

// PersistFunc receives a state snapshot after every mutation.
type PersistFunc func(state widget.State)

// Processor serializes all mutations of a view's state. Donation events
// may arrive concurrently from socket adapters, the embed endpoint and
// the sync layer; the mutex stands in for the event loop the overlay
// model assumes.
type Processor struct {
	mu    sync.Mutex
	state widget.State

	// commitMu is acquired while mu is still held and released after the
	// callbacks return, so observers and persistence see mutations in
	// the order they were applied. Without it a slow persist of an older
	// snapshot could land after a newer one and roll the stored total
	// back.
	commitMu sync.Mutex

	onChange  ChangeFunc
	onPersist PersistFunc
	log       zerolog.Logger
}

// New builds a processor around an initial state. Both callbacks are
// optional; they run outside the state lock but serialized in mutation
// order, so a callback stalling on I/O delays later mutations rather
// than racing them.
func New(initial widget.State, onChange ChangeFunc, onPersist PersistFunc, log zerolog.Logger) *Processor {
	return &Processor{
		state:     initial.Clone(),
		onChange:  onChange,
		onPersist: onPersist,
		log:       log,
	}
}

// Process ingests one normalized donation event. This is the sole
// sanitization boundary for untrusted sources: a NaN or non-positive
// amount is dropped without error. Otherwise the donation is prepended
// to the history and the running total increases, atomically with
// respect to any other mutation.
func (p *Processor) Process(amount float64, username, message string) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		p.log.Debug().Float64("amount", amount).Str("username", username).Msg("dropping invalid donation amount")
		return
	}
	username = strings.TrimSpace(norm.NFC.String(username))

	p.mu.Lock()
	old := p.state.Settings.CurrentAmount.Float()
	next := old + amount

	d := widget.NewDonation(amount, username, message)
	history := append([]widget.Donation{d}, p.state.Donations...)
	if len(history) > HistoryLimit {
		history = history[:HistoryLimit]
	}
	p.state.Donations = history
	p.state.Settings.CurrentAmount = widget.FlexFloat(next)
	snap := p.state.Clone()
	p.commitMu.Lock()
	p.mu.Unlock()
	defer p.commitMu.Unlock()

	p.log.Info().Float64("amount", amount).Str("username", username).Float64("total", next).Msg("donation processed")
	p.notify(old, next, snap)
	p.persist(snap)
}

// Replace swaps the whole state for a snapshot received from another
// view (storage notification, remote poll or launch snapshot).
// Last-write-wins: no field-level merge. The transition is still
// reported so a remote increase fires visuals on this view too; persist
// is skipped when requested to avoid echoing a synced write back into
// the channel it came from.
func (p *Processor) Replace(state widget.State, persist bool) {
	p.mu.Lock()
	old := p.state.Settings.CurrentAmount.Float()
	p.state = state.Clone()
	next := p.state.Settings.CurrentAmount.Float()
	snap := p.state.Clone()
	p.commitMu.Lock()
	p.mu.Unlock()
	defer p.commitMu.Unlock()

	p.notify(old, next, snap)
	if persist {
		p.persist(snap)
	}
}

// UpdateSettings applies an editor-side mutation to everything except
// the running total. The current amount and history are preserved so a
// settings edit can never roll progress back.
func (p *Processor) UpdateSettings(mutate func(*widget.WidgetSettings)) {
	p.mu.Lock()
	old := p.state.Settings.CurrentAmount.Float()
	mutate(&p.state.Settings)
	p.state.Settings.CurrentAmount = widget.FlexFloat(old)
	snap := p.state.Clone()
	p.commitMu.Lock()
	p.mu.Unlock()
	defer p.commitMu.Unlock()

	// Reported as a flat transition: fires nothing, but lets observers
	// (credential wiring in particular) see the new settings.
	p.notify(old, old, snap)
	p.persist(snap)
}

// Reset clears all progress: total back to zero, history emptied.
// Decreases never fire triggers, so no transition is reported.
func (p *Processor) Reset() {
	p.mu.Lock()
	p.state.Settings.CurrentAmount = 0
	p.state.Donations = nil
	snap := p.state.Clone()
	p.commitMu.Lock()
	p.mu.Unlock()
	defer p.commitMu.Unlock()

	p.log.Info().Msg("progress reset")
	p.persist(snap)
}

// Snapshot returns a copy of the current state.
func (p *Processor) Snapshot() widget.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

func (p *Processor) notify(old, next float64, snap widget.State) {
	if p.onChange != nil {
		p.onChange(old, next, snap)
	}
}

func (p *Processor) persist(snap widget.State) {
	if p.onPersist != nil {
		p.onPersist(snap)
	}
}
