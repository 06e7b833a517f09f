package sync

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"

	"goalwidget/internal/widget"
)

// Overlay launch parameter names.
const (
	ParamOverlay  = "overlay"
	ParamSession  = "session"
	ParamSnapshot = "data"
)

// EncodeSnapshot serializes `{settings, donations}` for embedding in a
// launch URL.
func EncodeSnapshot(state widget.State) (string, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeSnapshot parses a URL-embedded snapshot. Standard base64 is
// accepted too, since pasted URLs sometimes arrive re-encoded.
func DecodeSnapshot(encoded string) (*widget.State, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = base64.StdEncoding.DecodeString(encoded)
	}
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	var state widget.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &state, nil
}

// LaunchURL builds the overlay launch address: the overlay flag, the
// session id for polling, and an inline snapshot so the overlay renders
// a usable state before its first successful remote fetch.
func LaunchURL(base, sessionID string, state widget.State) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse launch base: %w", err)
	}
	snapshot, err := EncodeSnapshot(state)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(ParamOverlay, "true")
	q.Set(ParamSession, sessionID)
	q.Set(ParamSnapshot, snapshot)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
