package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"goalwidget/internal/sessionstore"
)

// App bundles what the handlers need. The store is injected so tests
// run against the in-memory backend.
type App struct {
	Store sessionstore.Store
	Log   zerolog.Logger
}

func NewApp(store sessionstore.Store, log zerolog.Logger) *App {
	return &App{Store: store, Log: log}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"error": message})
}
