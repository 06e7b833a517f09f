// Package view wires one running view process together: initial state
// resolution, the donation processor, the trigger sequencer, the
// ingestion adapters and the three sync channels. The editor and the
// overlay run the same wiring; they differ only in who writes where.
package view

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"goalwidget/internal/identity"
	"goalwidget/internal/infra"
	"goalwidget/internal/ingest"
	"goalwidget/internal/ingest/push"
	"goalwidget/internal/localstore"
	"goalwidget/internal/sync"
	"goalwidget/internal/widget"
	"goalwidget/internal/widget/processor"
	"goalwidget/internal/widget/resolve"
	"goalwidget/internal/widget/trigger"
)

// Options assembles a view's collaborators. Dialer and Timers default
// to the real implementations.
type Options struct {
	Config *infra.Config
	Local  *localstore.Store
	Remote *sync.Client
	Dialer push.Dialer
	Timers trigger.Timers
	Logger zerolog.Logger
}

// Status is the passive health surface of a view.
type Status struct {
	Overlay        bool              `json:"overlay"`
	SessionID      string            `json:"sessionId"`
	FeedConnected  bool              `json:"feedConnected"`
	StreamElements string            `json:"streamElements"`
	LivePix        string            `json:"livePix"`
	RemoteSync     string            `json:"remoteSync"`
	CurrentAmount  widget.FlexFloat  `json:"currentAmount"`
	GoalAmount     widget.FlexFloat  `json:"goalAmount"`
	Donations      []widget.Donation `json:"donations"`
}

// View owns one editor or overlay instance.
type View struct {
	cfg    *infra.Config
	local  *localstore.Store
	remote *sync.Client
	log    zerolog.Logger

	overlay   bool
	sessionID string

	proc   *processor.Processor
	seq    *trigger.Sequencer
	manual ingest.Manual
	embed  *ingest.EmbedListener
	se     *push.Socket
	lp     *push.Socket
	seDeb  *ingest.Debouncer
	lpDeb  *ingest.Debouncer
	poller *sync.Poller
	pusher *sync.Pusher

	events chan trigger.Event
	cancel context.CancelFunc
}

// New resolves the initial state and builds the full adapter graph.
// Nothing connects or polls until Start.
func New(opts Options) (*View, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("view: config is required")
	}
	log := opts.Logger

	v := &View{
		cfg:     cfg,
		local:   opts.Local,
		remote:  opts.Remote,
		log:     log,
		overlay: cfg.OverlayMode,
		events:  make(chan trigger.Event, 64),
	}

	// Launch-parameter snapshot, decoded leniently: a corrupt snapshot
	// falls through to the local tier.
	var snapshot *widget.State
	if cfg.Snapshot != "" {
		decoded, err := sync.DecodeSnapshot(cfg.Snapshot)
		if err != nil {
			log.Warn().Err(err).Msg("ignoring malformed launch snapshot")
		} else {
			snapshot = decoded
		}
	}

	initial := resolve.Initial(snapshot, v.local.Settings(), v.local.Donations(), widget.DefaultSettings())
	if !v.overlay && len(initial.Donations) == 0 && cfg.SeedDonations {
		initial.Donations = widget.SeedDonations()
	}

	// Session identity: overlays trust their launch parameter; the
	// editor reuses or mints a persisted id.
	if v.overlay && cfg.SessionID != "" {
		v.sessionID = cfg.SessionID
	} else {
		id, err := identity.Resolve(v.local)
		if err != nil {
			log.Warn().Err(err).Msg("session id not persisted; using it for this run only")
		}
		v.sessionID = id
	}

	v.seq = trigger.NewSequencer(opts.Timers, v.emit, log)
	v.proc = processor.New(initial,
		func(old, new float64, state widget.State) {
			v.seq.Observe(old, new, state.Settings)
			v.syncCredentials(state.Settings)
		},
		v.persist,
		log,
	)
	v.manual = ingest.Manual{Sink: v.proc}
	v.embed = &ingest.EmbedListener{Sink: v.proc, Log: log}
	v.se = push.NewSocket(push.StreamElements{}, v.proc, opts.Dialer, log)
	v.lp = push.NewSocket(push.LivePix{}, v.proc, opts.Dialer, log)
	v.seDeb = ingest.NewDebouncer(cfg.DebounceInterval, v.se.SetCredential)
	v.lpDeb = ingest.NewDebouncer(cfg.DebounceInterval, v.lp.SetCredential)

	if v.overlay {
		v.poller = sync.NewPoller(v.remote, v.sessionID, cfg.PollInterval, v.applyRemote, log)
	} else if v.sessionID != "" {
		v.pusher = sync.NewPusher(v.remote, v.sessionID, log)
	}
	return v, nil
}

// Start brings the sync channels and feeds up. It returns immediately;
// everything runs on background goroutines until Stop.
func (v *View) Start(ctx context.Context) error {
	ctx, v.cancel = context.WithCancel(ctx)

	if err := v.local.Watch(ctx, v.applyLocalChange, v.log); err != nil {
		return err
	}

	snap := v.proc.Snapshot()
	v.persist(snap)
	v.syncCredentials(snap.Settings)
	// Tokens present at startup should connect without waiting out the
	// typing debounce.
	v.seDeb.Flush()
	v.lpDeb.Flush()

	if v.overlay {
		go v.poller.Run(ctx)
	} else if v.pusher != nil {
		// The persist above already queued the first-load snapshot;
		// starting the worker materializes the session, best effort.
		go v.pusher.Run(ctx)
	}
	go v.consumeEvents(ctx)
	return nil
}

// Stop tears everything down. In-flight remote calls are not cancelled
// beyond their own timeouts; late responses land after the processor
// stops being observed and are harmless.
func (v *View) Stop() {
	if v.cancel != nil {
		v.cancel()
	}
	v.seDeb.Stop()
	v.lpDeb.Stop()
	v.se.Close()
	v.lp.Close()
	v.seq.Close()
}

// Trigger is the manual/test adapter surface.
func (v *View) Trigger(amount float64, username, message string) {
	v.manual.Trigger(amount, username, message)
}

// Embed exposes the native embed listener for the control server.
func (v *View) Embed() *ingest.EmbedListener { return v.embed }

// UpdateSettings applies an editor mutation.
func (v *View) UpdateSettings(mutate func(*widget.WidgetSettings)) {
	v.proc.UpdateSettings(mutate)
}

// Reset clears progress and history everywhere.
func (v *View) Reset() {
	v.proc.Reset()
}

// CompleteRoulette clears the roulette once the wheel settles.
func (v *View) CompleteRoulette() { v.seq.CompleteRoulette() }

// LaunchOverlay freezes the current state into the remote session and
// returns the overlay URL carrying the session id and inline snapshot.
func (v *View) LaunchOverlay(ctx context.Context) (string, error) {
	snap := v.proc.Snapshot()
	pushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := v.remote.Push(pushCtx, v.sessionID, snap); err != nil {
		// The inline snapshot still gives the overlay a usable start.
		v.log.Warn().Err(err).Msg("session push at launch failed")
	}
	return sync.LaunchURL(v.cfg.OverlayBaseURL, v.sessionID, snap)
}

// Status reports feed and sync health plus a state summary. The
// externally visible feed status is the OR of the two providers.
func (v *View) Status() Status {
	snap := v.proc.Snapshot()
	st := Status{
		Overlay:        v.overlay,
		SessionID:      v.sessionID,
		FeedConnected:  v.se.Connected() || v.lp.Connected(),
		StreamElements: v.se.State().String(),
		LivePix:        v.lp.State().String(),
		RemoteSync:     "local-only",
		CurrentAmount:  snap.Settings.CurrentAmount,
		GoalAmount:     snap.Settings.GoalAmount,
		Donations:      snap.Donations,
	}
	if v.poller != nil {
		st.RemoteSync = v.poller.Status().String()
	}
	return st
}

// Snapshot returns the current state.
func (v *View) Snapshot() widget.State { return v.proc.Snapshot() }

// persist mirrors every mutation into the local store, and from the
// editor also into the remote session so overlay polls stay fresh.
// Calls arrive in mutation order (the processor serializes them); the
// remote side goes through the pusher so slow PUTs cannot reorder.
func (v *View) persist(state widget.State) {
	if err := v.local.SetSettings(state.Settings); err != nil {
		v.log.Error().Err(err).Msg("persist settings failed")
	}
	if err := v.local.SetDonations(state.Donations); err != nil {
		v.log.Error().Err(err).Msg("persist donations failed")
	}
	if v.pusher != nil {
		v.pusher.Enqueue(state)
	}
}

// applyLocalChange merges a slot another view rewrote. Whole-slot
// replacement, last write wins.
func (v *View) applyLocalChange(key string, raw []byte) {
	state := v.proc.Snapshot()
	switch key {
	case localstore.KeySettings:
		var ws widget.WidgetSettings
		if err := json.Unmarshal(raw, &ws); err != nil {
			v.log.Warn().Err(err).Msg("ignoring malformed synced settings")
			return
		}
		state.Settings = ws
	case localstore.KeyDonations:
		var ds []widget.Donation
		if err := json.Unmarshal(raw, &ds); err != nil {
			v.log.Warn().Err(err).Msg("ignoring malformed synced donations")
			return
		}
		state.Donations = ds
	default:
		return
	}
	v.proc.Replace(state, false)
}

// applyRemote replaces state wholesale from a successful poll.
func (v *View) applyRemote(state widget.State) {
	v.proc.Replace(state, false)
}

// syncCredentials feeds the (possibly changed) tokens through the
// debouncers; unchanged values are no-ops downstream.
func (v *View) syncCredentials(s widget.WidgetSettings) {
	v.seDeb.Set(s.StreamElementsToken)
	v.lpDeb.Set(s.LivePixKey)
}

func (v *View) emit(ev trigger.Event) {
	select {
	case v.events <- ev:
	default:
		// A stalled consumer must never block the sequencer.
	}
}

// consumeEvents logs the trigger stream; the presentation layer is out
// of process and tails these.
func (v *View) consumeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-v.events:
			entry := v.log.Info().Str("trigger", string(ev.Kind))
			if ev.Reward != nil {
				entry = entry.Str("reward", ev.Reward.Label).Float64("threshold", ev.Reward.Amount.Float())
			}
			entry.Msg("visual trigger")
		}
	}
}
