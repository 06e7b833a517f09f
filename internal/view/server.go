package view

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"goalwidget/internal/middleware"
	"goalwidget/internal/widget"
)

// NewControlRouter exposes a view's operator surface on its local port:
// the native embed event endpoint, the manual test trigger, settings
// replacement, reset, overlay launch and the status probe.
func NewControlRouter(v *View, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.Recoverer,
		middleware.Logger(log),
	)

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, v.Status())
	})

	r.Post("/embed/event", v.Embed().ServeHTTP)

	r.Post("/donate", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Amount   widget.FlexFloat `json:"amount"`
			Username string           `json:"username"`
			Message  string           `json:"message"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		v.Trigger(body.Amount.Float(), body.Username, body.Message)
		w.WriteHeader(http.StatusNoContent)
	})

	r.Put("/settings", func(w http.ResponseWriter, req *http.Request) {
		var ws widget.WidgetSettings
		if err := json.NewDecoder(req.Body).Decode(&ws); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		v.UpdateSettings(func(s *widget.WidgetSettings) { *s = ws })
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/reset", func(w http.ResponseWriter, req *http.Request) {
		v.Reset()
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/roulette/complete", func(w http.ResponseWriter, req *http.Request) {
		v.CompleteRoulette()
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/launch", func(w http.ResponseWriter, req *http.Request) {
		url, err := v.LaunchOverlay(req.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
