package push

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// LivePixURLFormat is the widget feed endpoint; the %s is the widget id.
var LivePixURLFormat = "wss://widget.livepix.gg/ws/%s"

var (
	livePixEmbedPattern = regexp.MustCompile(`livepix\.gg/embed/([A-Za-z0-9_-]+)`)
	livePixIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ExtractLivePixWidgetID accepts either a bare widget id or a pasted
// embed URL and returns the id.
func ExtractLivePixWidgetID(credential string) (string, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", errors.New("livepix: empty key")
	}
	if m := livePixEmbedPattern.FindStringSubmatch(credential); m != nil {
		return m[1], nil
	}
	if livePixIDPattern.MatchString(credential) {
		return credential, nil
	}
	return "", errors.New("livepix: key is neither a widget id nor an embed url")
}

// LivePix adapts the LivePix widget feed. No handshake beyond the
// widget id in the dial target; the server announces `connect` once the
// feed is live. Donation amounts arrive as strings.
type LivePix struct{}

func (LivePix) Name() string { return "livepix" }

func (LivePix) Endpoint(credential string) (string, error) {
	id, err := ExtractLivePixWidgetID(credential)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(LivePixURLFormat, id), nil
}

func (LivePix) AuthMessage(string) ([]byte, bool) { return nil, false }

type lpFrame struct {
	Event string `json:"event"`
	Data  struct {
		Amount   string `json:"amount"`
		Username string `json:"username"`
		Message  string `json:"message"`
	} `json:"data"`
}

func (LivePix) Handle(raw []byte) (Verdict, *Tip) {
	var frame lpFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return VerdictNone, nil
	}
	switch frame.Event {
	case "connect":
		return VerdictAuthenticated, nil
	case "disconnect":
		return VerdictDisconnect, nil
	case "donation":
		amount, err := strconv.ParseFloat(strings.TrimSpace(frame.Data.Amount), 64)
		if err != nil {
			// Let the processor's validation boundary drop it.
			amount = math.NaN()
		}
		return VerdictTip, &Tip{
			Amount:   amount,
			Username: frame.Data.Username,
			Message:  frame.Data.Message,
		}
	}
	return VerdictNone, nil
}

var _ Provider = LivePix{}
