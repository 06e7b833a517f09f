package trigger

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"goalwidget/internal/widget"
)

// Animation schedule. The shake lands immediately and the other
// categories are offset behind it; the relative ordering is part of the
// contract with the presentation layer.
const (
	ShakeDuration       = 500 * time.Millisecond
	TrailDelay          = 600 * time.Millisecond
	RouletteDelay       = 800 * time.Millisecond
	TrailDuration       = 6 * time.Second
	CelebrationDuration = 8 * time.Second
)

// EventKind names a presentation-facing trigger event.
type EventKind string

const (
	EventShakeStart       EventKind = "shake_start"
	EventShakeEnd         EventKind = "shake_end"
	EventRouletteShow     EventKind = "roulette_show"
	EventRouletteHide     EventKind = "roulette_hide"
	EventTrailShow        EventKind = "trail_show"
	EventTrailHide        EventKind = "trail_hide"
	EventCelebrationStart EventKind = "celebration_start"
	EventCelebrationEnd   EventKind = "celebration_end"
)

// Event is what the presentation layer consumes.
type Event struct {
	Kind   EventKind
	Reward *widget.TrailReward // set on trail events
}

// Timers abstracts time.AfterFunc so sequencing is deterministic under
// test. The returned stop function is safe to call more than once.
type Timers interface {
	AfterFunc(d time.Duration, f func()) (stop func())
}

type realTimers struct{}

func (realTimers) AfterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// RealTimers schedules on the wall clock.
func RealTimers() Timers { return realTimers{} }

// Sequencer turns trigger sets into a timed event stream and tracks
// which visuals are currently active. One sequencer per view.
type Sequencer struct {
	mu     sync.Mutex
	timers Timers
	emit   func(Event)
	log    zerolog.Logger

	shaking     bool
	roulette    bool
	trail       *widget.TrailReward
	celebration bool

	stops  map[uint64]func()
	nextID uint64
	closed bool
}

// NewSequencer wires a sequencer to an event consumer. emit is called
// from timer goroutines and must not block for long.
func NewSequencer(timers Timers, emit func(Event), log zerolog.Logger) *Sequencer {
	if timers == nil {
		timers = RealTimers()
	}
	return &Sequencer{timers: timers, emit: emit, log: log, stops: make(map[uint64]func())}
}

// Observe schedules the visuals for one amount transition. Calling it
// with a non-increasing transition is a no-op.
func (s *Sequencer) Observe(old, new float64, settings widget.WidgetSettings) {
	set := Compute(old, new, settings)
	if !set.Any() {
		return
	}
	s.log.Debug().
		Float64("old", old).
		Float64("new", new).
		Bool("roulette", set.Roulette).
		Bool("celebration", set.Celebration).
		Msg("transition triggers")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.shaking = true
	s.send(Event{Kind: EventShakeStart})
	s.after(ShakeDuration, func() {
		s.shaking = false
		s.send(Event{Kind: EventShakeEnd})
	})

	if set.TrailReward != nil {
		reward := set.TrailReward
		s.after(TrailDelay, func() {
			s.trail = reward
			s.send(Event{Kind: EventTrailShow, Reward: reward})
		})
		s.after(TrailDelay+TrailDuration, func() {
			s.trail = nil
			s.send(Event{Kind: EventTrailHide, Reward: reward})
		})
	}

	if set.Roulette {
		s.after(RouletteDelay, func() {
			s.roulette = true
			s.send(Event{Kind: EventRouletteShow})
		})
	}

	if set.Celebration {
		s.celebration = true
		s.send(Event{Kind: EventCelebrationStart})
		s.after(CelebrationDuration, func() {
			s.celebration = false
			s.send(Event{Kind: EventCelebrationEnd})
		})
	}
}

// CompleteRoulette is called when the wheel finishes spinning; the
// roulette has no fixed duration of its own.
func (s *Sequencer) CompleteRoulette() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.roulette {
		return
	}
	s.roulette = false
	s.send(Event{Kind: EventRouletteHide})
}

// Active reports which visuals are currently showing.
func (s *Sequencer) Active() (shaking, roulette, celebration bool, trail *widget.TrailReward) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shaking, s.roulette, s.celebration, s.trail
}

// Close cancels all pending timers; late timer callbacks become no-ops.
func (s *Sequencer) Close() {
	s.mu.Lock()
	stops := s.stops
	s.stops = nil
	s.closed = true
	s.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
}

// after schedules f under the sequencer lock. Caller must hold mu. The
// stop handle is dropped once the timer fires, so a long-running view
// does not accumulate one closure per past animation.
func (s *Sequencer) after(d time.Duration, f func()) {
	id := s.nextID
	s.nextID++
	stop := s.timers.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.stops, id)
		if s.closed {
			return
		}
		f()
	})
	s.stops[id] = stop
}

// send must be called with mu held; the emit callback itself runs
// synchronously, so consumers should hand off to a channel.
func (s *Sequencer) send(ev Event) {
	if s.emit != nil {
		s.emit(ev)
	}
}
