package resolve

import (
	"testing"

	"goalwidget/internal/widget"
)

func stateWith(current float64, title string) *widget.State {
	s := widget.DefaultSettings()
	s.CurrentAmount = widget.FlexFloat(current)
	s.Title = title
	return &widget.State{
		Settings:  s,
		Donations: []widget.Donation{{ID: "snap", Amount: current}},
	}
}

func settingsWith(current float64, title string) *widget.WidgetSettings {
	s := widget.DefaultSettings()
	s.CurrentAmount = widget.FlexFloat(current)
	s.Title = title
	return &s
}

func TestInitialDefaultsWhenAllSilent(t *testing.T) {
	got := Initial(nil, nil, nil, widget.DefaultSettings())
	if got.Settings.Title != widget.DefaultSettings().Title {
		t.Fatalf("title = %q, want default", got.Settings.Title)
	}
	if len(got.Donations) != 0 {
		t.Fatalf("donations = %v, want none", got.Donations)
	}
}

func TestInitialLocalBeatsDefaults(t *testing.T) {
	local := settingsWith(80, "Local Goal")
	localDonations := []widget.Donation{{ID: "local", Amount: 80}}

	got := Initial(nil, local, localDonations, widget.DefaultSettings())
	if got.Settings.Title != "Local Goal" {
		t.Fatalf("title = %q, want local tier", got.Settings.Title)
	}
	if len(got.Donations) != 1 || got.Donations[0].ID != "local" {
		t.Fatalf("donations = %v, want local history", got.Donations)
	}
}

func TestInitialSnapshotBeatsLocalForDesign(t *testing.T) {
	snapshot := stateWith(120, "Snapshot Goal")
	local := settingsWith(300, "Local Goal")

	got := Initial(snapshot, local, nil, widget.DefaultSettings())
	if got.Settings.Title != "Snapshot Goal" {
		t.Fatalf("title = %q, want snapshot tier", got.Settings.Title)
	}
}

func TestInitialLocalProgressBeatsStaleSnapshot(t *testing.T) {
	// The snapshot froze at launch time; donations kept landing in the
	// local store afterwards. Progress comes from local.
	snapshot := stateWith(120, "Snapshot Goal")
	local := settingsWith(300, "Local Goal")

	got := Initial(snapshot, local, nil, widget.DefaultSettings())
	if got.Settings.CurrentAmount.Float() != 300 {
		t.Fatalf("currentAmount = %v, want 300 from local", got.Settings.CurrentAmount.Float())
	}
}

func TestInitialSnapshotProgressWithoutLocal(t *testing.T) {
	snapshot := stateWith(120, "Snapshot Goal")
	got := Initial(snapshot, nil, nil, widget.DefaultSettings())
	if got.Settings.CurrentAmount.Float() != 120 {
		t.Fatalf("currentAmount = %v, want 120 from snapshot", got.Settings.CurrentAmount.Float())
	}
	if len(got.Donations) != 1 || got.Donations[0].ID != "snap" {
		t.Fatalf("donations = %v, want snapshot history", got.Donations)
	}
}

func TestInitialLocalDonationsFillSnapshotGap(t *testing.T) {
	snapshot := &widget.State{Settings: widget.DefaultSettings()}
	localDonations := []widget.Donation{{ID: "local", Amount: 5}}

	got := Initial(snapshot, nil, localDonations, widget.DefaultSettings())
	if len(got.Donations) != 1 || got.Donations[0].ID != "local" {
		t.Fatalf("donations = %v, want local fallback", got.Donations)
	}
}
