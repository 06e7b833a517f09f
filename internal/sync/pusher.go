package sync

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"goalwidget/internal/widget"
)

// Pusher serializes remote session writes: at most one PUT in flight,
// and a burst of mutations collapses to the newest snapshot. An older
// snapshot can therefore never land after a newer one and roll the
// remote total back.
type Pusher struct {
	client    *Client
	sessionID string
	log       zerolog.Logger

	queue chan widget.State
}

// NewPusher wires a pusher to one session. Run must be started for
// enqueued snapshots to go anywhere.
func NewPusher(client *Client, sessionID string, log zerolog.Logger) *Pusher {
	return &Pusher{
		client:    client,
		sessionID: sessionID,
		log:       log,
		queue:     make(chan widget.State, 1),
	}
}

// Enqueue schedules state for the next push, replacing any snapshot
// still waiting. Never blocks.
func (p *Pusher) Enqueue(state widget.State) {
	for {
		select {
		case p.queue <- state:
			return
		default:
		}
		select {
		case <-p.queue:
		default:
		}
	}
}

// Run pushes queued snapshots until ctx is cancelled. Failures are
// logged and dropped; the next mutation enqueues a fresher snapshot
// anyway.
func (p *Pusher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case state := <-p.queue:
			pushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := p.client.Push(pushCtx, p.sessionID, state)
			cancel()
			if err != nil && ctx.Err() == nil {
				p.log.Debug().Err(err).Str("session_id", p.sessionID).Msg("remote mirror push failed")
			}
		}
	}
}
