package handlers

import (
	"net/http"
)

// Health reports liveness only. It does not touch the session backend;
// a degraded store fails session calls, not this endpoint.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
