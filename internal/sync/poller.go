package sync

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"goalwidget/internal/widget"
)

// Status of the remote sync channel.
type Status int32

const (
	StatusUnknown Status = iota
	StatusSynced
	StatusDegraded
)

func (s Status) String() string {
	switch s {
	case StatusSynced:
		return "synced"
	case StatusDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Poller pulls the remote session on a fixed interval and replaces
// local state wholesale with whatever it receives. On failure the view
// keeps its last-known state and the status turns degraded; polling
// never stops and never escalates.
type Poller struct {
	client    *Client
	sessionID string
	interval  time.Duration
	apply     func(widget.State)
	log       zerolog.Logger

	status atomic.Int32
}

// NewPoller wires a poller to a state consumer.
func NewPoller(client *Client, sessionID string, interval time.Duration, apply func(widget.State), log zerolog.Logger) *Poller {
	return &Poller{
		client:    client,
		sessionID: sessionID,
		interval:  interval,
		apply:     apply,
		log:       log,
	}
}

// Status returns the current channel health.
func (p *Poller) Status() Status {
	return Status(p.status.Load())
}

// Run polls until ctx is cancelled. An immediate first fetch narrows
// the window between launch snapshot and first sync.
func (p *Poller) Run(ctx context.Context) {
	p.poll(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	state, err := p.client.Fetch(ctx, p.sessionID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		prev := Status(p.status.Swap(int32(StatusDegraded)))
		if prev != StatusDegraded {
			p.log.Warn().Err(err).Str("session_id", p.sessionID).Msg("remote sync degraded")
		}
		return
	}
	prev := Status(p.status.Swap(int32(StatusSynced)))
	if prev == StatusDegraded {
		p.log.Info().Str("session_id", p.sessionID).Msg("remote sync recovered")
	}
	p.apply(*state)
}
