// Package push runs the persistent socket feeds. One generic client
// owns the connect/authenticate/read lifecycle; providers only know
// their endpoint, their handshake and their message shape.
package push

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"goalwidget/internal/ingest"
)

// ConnState is the externally visible lifecycle of one feed.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Tip is a normalized donation event from a provider. Amount may be NaN
// when the provider payload would not parse; the sink drops those.
type Tip struct {
	Amount   float64
	Username string
	Message  string
}

// Verdict tells the client what a provider message meant.
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictAuthenticated
	VerdictUnauthorized
	VerdictTip
	VerdictDisconnect
)

// Provider adapts one external feed: where to connect for a credential,
// what to say first, and how to read each message.
type Provider interface {
	Name() string
	// Endpoint validates/extracts the credential and returns the dial
	// target. An error means the credential cannot possibly work and no
	// connection is attempted.
	Endpoint(credential string) (string, error)
	// AuthMessage returns the frame to send right after connecting, if
	// the provider has a handshake.
	AuthMessage(credential string) ([]byte, bool)
	// Handle interprets one raw message.
	Handle(raw []byte) (Verdict, *Tip)
}

// Dialer abstracts websocket dialing for tests.
type Dialer interface {
	DialContext(ctx context.Context, url string) (Conn, error)
}

// Conn is the subset of a websocket connection the client uses.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type wsDialer struct{}

func (wsDialer) DialContext(ctx context.Context, url string) (Conn, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Socket runs one provider feed. Credential changes tear the current
// connection down and dial fresh; a cleared credential just tears down.
// There is no retry backoff: a dropped feed stays disconnected until
// the credential changes again, and the widget keeps working from
// local state meanwhile.
type Socket struct {
	provider Provider
	sink     ingest.Sink
	dialer   Dialer
	log      zerolog.Logger

	state atomic.Int32

	mu         sync.Mutex
	cancel     context.CancelFunc
	credential string
	gen        uint64
	closed     bool
}

// NewSocket builds a feed runner. A nil dialer uses the real websocket
// dialer.
func NewSocket(provider Provider, sink ingest.Sink, dialer Dialer, log zerolog.Logger) *Socket {
	if dialer == nil {
		dialer = wsDialer{}
	}
	return &Socket{
		provider: provider,
		sink:     sink,
		dialer:   dialer,
		log:      log.With().Str("provider", provider.Name()).Logger(),
	}
}

// State reports the feed lifecycle.
func (s *Socket) State() ConnState {
	return ConnState(s.state.Load())
}

// Connected is true while the feed is authenticated and live.
func (s *Socket) Connected() bool { return s.State() == StateConnected }

// SetCredential reacts to a (debounced) credential change. Same value
// twice is a no-op; anything else cancels the running session and, for
// a non-empty credential, starts a new one.
func (s *Socket) SetCredential(credential string) {
	s.mu.Lock()
	if s.closed || credential == s.credential {
		s.mu.Unlock()
		return
	}
	s.credential = credential
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if credential == "" {
		s.mu.Unlock()
		s.state.Store(int32(StateDisconnected))
		s.log.Info().Msg("credential cleared, feed torn down")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(ctx, credential, gen)
}

// Close tears the feed down permanently.
func (s *Socket) Close() {
	s.mu.Lock()
	s.closed = true
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.state.Store(int32(StateDisconnected))
}

// setState stores st only while gen is still the current session. A run
// that has been superseded by a credential change lingers until its
// read unblocks; letting its exit write through would mark the
// replacement session disconnected.
func (s *Socket) setState(gen uint64, st ConnState) {
	s.mu.Lock()
	owned := gen == s.gen && !s.closed
	s.mu.Unlock()
	if owned {
		s.state.Store(int32(st))
	}
}

func (s *Socket) run(ctx context.Context, credential string, gen uint64) {
	defer s.setState(gen, StateDisconnected)

	endpoint, err := s.provider.Endpoint(credential)
	if err != nil {
		s.log.Warn().Err(err).Msg("unusable credential")
		return
	}

	s.setState(gen, StateConnecting)
	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	conn, err := s.dialer.DialContext(dialCtx, endpoint)
	cancel()
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn().Err(err).Msg("feed dial failed")
		}
		return
	}
	defer conn.Close()

	// Unblock ReadMessage when the credential changes mid-session.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	if frame, ok := s.provider.AuthMessage(credential); ok {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			s.log.Warn().Err(err).Msg("feed handshake write failed")
			return
		}
	} else {
		// Providers without a handshake are live once dialed.
		s.setState(gen, StateConnected)
		s.log.Info().Msg("feed connected")
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.log.Info().Err(err).Msg("feed closed")
			}
			return
		}
		verdict, tip := s.provider.Handle(raw)
		switch verdict {
		case VerdictAuthenticated:
			s.setState(gen, StateConnected)
			s.log.Info().Msg("feed authenticated")
		case VerdictUnauthorized:
			s.log.Warn().Msg("feed rejected credential")
			return
		case VerdictTip:
			if tip != nil {
				s.sink.Process(tip.Amount, tip.Username, tip.Message)
			}
		case VerdictDisconnect:
			s.log.Info().Msg("feed asked to disconnect")
			return
		}
	}
}
