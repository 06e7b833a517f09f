// Package resolve turns the competing persistence sources a view sees
// at startup into one initial state, as a pure cascade with no storage
// I/O of its own.
package resolve

import "goalwidget/internal/widget"

// Initial resolves the startup state from, in strict priority order:
// the remote/URL snapshot, the local persistent store, and hardcoded
// defaults. Each tier applies only where the previous one is silent.
//
// One deliberate exception: when local progress exists, its
// currentAmount wins over the snapshot's. The snapshot is frozen at
// overlay-launch time while the local store keeps receiving donations,
// so the local total is never staler than the snapshot's.
func Initial(snapshot *widget.State, localSettings *widget.WidgetSettings, localDonations []widget.Donation, defaults widget.WidgetSettings) widget.State {
	var out widget.State

	switch {
	case snapshot != nil:
		out = snapshot.Clone()
	case localSettings != nil:
		out.Settings = *localSettings
	default:
		out.Settings = defaults
	}

	if out.Donations == nil && localDonations != nil {
		out.Donations = append([]widget.Donation(nil), localDonations...)
	}

	if snapshot != nil && localSettings != nil {
		out.Settings.CurrentAmount = localSettings.CurrentAmount
	}

	return out
}
