package widget

// State is the `{settings, donations}` aggregate a single view owns. It
// is also the unit of exchange for every sync channel: URL snapshots,
// the local mirror and the remote session store all move whole State
// values, never individual fields.
type State struct {
	Settings  WidgetSettings `json:"settings"`
	Donations []Donation     `json:"donations"`
}

// Clone returns a deep enough copy that the caller can hand it across a
// goroutine boundary without sharing slices with the owner.
func (s State) Clone() State {
	out := s
	if s.Donations != nil {
		out.Donations = append([]Donation(nil), s.Donations...)
	}
	if s.Settings.RouletteEvents != nil {
		out.Settings.RouletteEvents = append([]string(nil), s.Settings.RouletteEvents...)
	}
	if s.Settings.TrailRewards != nil {
		out.Settings.TrailRewards = append([]TrailReward(nil), s.Settings.TrailRewards...)
	}
	return out
}
