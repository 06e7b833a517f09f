package push

import (
	"encoding/json"
	"errors"
	"strings"

	"goalwidget/internal/widget"
)

// StreamElementsURL is the realtime endpoint; overridable in tests.
var StreamElementsURL = "wss://realtime.streamelements.com/socket"

// StreamElements adapts the JWT-gated realtime feed. Handshake:
// connect, send `authenticate {method: "jwt", token}`, then wait for
// `authenticated` or `unauthorized`. Donations arrive as `event`
// messages with type "tip".
type StreamElements struct{}

func (StreamElements) Name() string { return "streamelements" }

func (StreamElements) Endpoint(credential string) (string, error) {
	if strings.TrimSpace(credential) == "" {
		return "", errors.New("streamelements: empty token")
	}
	return StreamElementsURL, nil
}

type seFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type seAuth struct {
	Method string `json:"method"`
	Token  string `json:"token"`
}

type seEvent struct {
	Type string `json:"type"`
	Data struct {
		Amount   widget.FlexFloat `json:"amount"`
		Username string           `json:"username"`
		Name     string           `json:"name"`
		Message  string           `json:"message"`
	} `json:"data"`
}

func (StreamElements) AuthMessage(credential string) ([]byte, bool) {
	frame, _ := json.Marshal(map[string]any{
		"event": "authenticate",
		"data":  seAuth{Method: "jwt", Token: credential},
	})
	return frame, true
}

func (StreamElements) Handle(raw []byte) (Verdict, *Tip) {
	var frame seFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return VerdictNone, nil
	}
	switch frame.Event {
	case "authenticated":
		return VerdictAuthenticated, nil
	case "unauthorized":
		return VerdictUnauthorized, nil
	case "disconnect":
		return VerdictDisconnect, nil
	case "event":
		var ev seEvent
		if err := json.Unmarshal(frame.Data, &ev); err != nil {
			return VerdictNone, nil
		}
		if ev.Type != "tip" {
			return VerdictNone, nil
		}
		username := ev.Data.Username
		if username == "" {
			username = ev.Data.Name
		}
		return VerdictTip, &Tip{
			Amount:   ev.Data.Amount.Float(),
			Username: username,
			Message:  ev.Data.Message,
		}
	}
	return VerdictNone, nil
}

var _ Provider = StreamElements{}
