// Package trigger derives visual events from running-total transitions.
// The decision logic is a pure function of (old, new, settings); the
// Sequencer layers the timing contract on top so the decision stays
// testable without timers.
package trigger

import (
	"math"

	"goalwidget/internal/widget"
)

// Set is the outcome of one amount transition. The four categories are
// independent; a single donation can light all of them at once.
type Set struct {
	Shake       bool
	Roulette    bool
	TrailReward *widget.TrailReward
	Celebration bool
}

// Any reports whether the transition fires anything at all.
func (s Set) Any() bool {
	return s.Shake || s.Roulette || s.TrailReward != nil || s.Celebration
}

// Compute decides which visual events a transition from old to new
// fires. Only strict increases qualify: wholesale replacement with an
// identical snapshot, resets and decreases all come out empty, which is
// what keeps cross-view sync from re-firing animations.
func Compute(old, new float64, s widget.WidgetSettings) Set {
	if !(new > old) {
		return Set{}
	}

	out := Set{Shake: true}
	goal := s.GoalAmount.Float()
	crossedGoal := new >= goal && old < goal

	if s.EnableRoulette {
		switch s.GoalMode {
		case widget.GoalSubGoals:
			// At most one fire per transition, even when a large
			// donation skips several interval boundaries.
			if interval := s.SubGoalInterval.Float(); interval > 0 {
				if math.Floor(new/interval) > math.Floor(old/interval) {
					out.Roulette = true
				}
			}
		case widget.GoalSimple:
			out.Roulette = crossedGoal
		}
	}

	// Highest reward whose threshold lies in (old, new]; lower ones
	// crossed in the same jump stay silent.
	var best *widget.TrailReward
	for i := range s.TrailRewards {
		r := &s.TrailRewards[i]
		amt := r.Amount.Float()
		if amt <= old || amt > new {
			continue
		}
		if best == nil || amt > best.Amount.Float() {
			best = r
		}
	}
	if best != nil {
		copied := *best
		out.TrailReward = &copied
	}

	out.Celebration = crossedGoal
	return out
}
