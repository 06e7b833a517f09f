package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"goalwidget/internal/sessionstore"
)

type sessionPayload struct {
	Settings  json.RawMessage `json:"settings"`
	Donations json.RawMessage `json:"donations"`
}

// SessionCreate mints a session around the posted `{settings, donations}`
// body. An unreadable body still creates a session with empty blobs, the
// same way the store treats missing fields.
func (a *App) SessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = sessionPayload{}
	}
	id, data, err := a.Store.Create(r.Context(), sessionstore.Data{
		Settings:  req.Settings,
		Donations: req.Donations,
	})
	if err != nil {
		a.Log.Error().Err(err).Msg("session create failed")
		a.error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"sessionId": id, "data": data})
}

// SessionGet returns `{settings, donations, lastUpdated}` for ?id=.
func (a *App) SessionGet(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "Session ID is required")
		return
	}
	data, err := a.Store.Get(r.Context(), id)
	if errors.Is(err, sessionstore.ErrNotFound) {
		a.error(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		a.Log.Error().Err(err).Str("session_id", id).Msg("session get failed")
		a.error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	a.json(w, http.StatusOK, data)
}

// SessionPut overwrites the blob for ?id= wholesale. Last write wins;
// a put for an id that was never created is accepted, which lets a view
// re-materialize a session the sweep already expired.
func (a *App) SessionPut(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "Session ID is required")
		return
	}
	var req sessionPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	data, err := a.Store.Put(r.Context(), id, sessionstore.Data{
		Settings:  req.Settings,
		Donations: req.Donations,
	})
	if err != nil {
		a.Log.Error().Err(err).Str("session_id", id).Msg("session put failed")
		a.error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

// MethodNotAllowed mirrors the JSON error shape for unsupported verbs.
func (a *App) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusMethodNotAllowed, "Method not allowed")
}
