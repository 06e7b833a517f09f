package ingest

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"goalwidget/internal/widget"
)

// tipListener is the envelope listener value that carries donations.
// Envelopes for any other listener (subscribers, followers, ...) are
// acknowledged and ignored.
const tipListener = "tip-latest"

// EmbedEnvelope is the host-delivered event shape: the hosting page
// relays its widget events as `{listener, event}` envelopes.
type EmbedEnvelope struct {
	Listener string     `json:"listener"`
	Event    EmbedEvent `json:"event"`
}

// EmbedEvent carries the donation fields. Name and Username are
// alternatives; hosts differ on which one they fill.
type EmbedEvent struct {
	Amount   widget.FlexFloat `json:"amount"`
	Name     string           `json:"name"`
	Username string           `json:"username"`
	Message  string           `json:"message"`
}

// EmbedListener consumes host envelopes delivered to the view's local
// HTTP endpoint.
type EmbedListener struct {
	Sink Sink
	Log  zerolog.Logger
}

// Consume filters and forwards one envelope.
func (l *EmbedListener) Consume(env EmbedEnvelope) {
	if env.Listener != tipListener {
		l.Log.Debug().Str("listener", env.Listener).Msg("ignoring non-tip envelope")
		return
	}
	username := env.Event.Username
	if username == "" {
		username = env.Event.Name
	}
	l.Sink.Process(env.Event.Amount.Float(), username, env.Event.Message)
}

// ServeHTTP accepts POSTed envelopes. A malformed body is dropped with
// 204 as well: embed sources are untrusted and must never surface
// errors into the view.
func (l *EmbedListener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var env EmbedEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		l.Log.Debug().Err(err).Msg("ignoring malformed embed envelope")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	l.Consume(env)
	w.WriteHeader(http.StatusNoContent)
}
