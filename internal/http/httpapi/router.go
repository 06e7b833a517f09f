package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"goalwidget/internal/http/handlers"
	"goalwidget/internal/middleware"
)

// NewRouter assembles the session service routes.
func NewRouter(app *handlers.App, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(log),
		middleware.CORS,
	)

	r.Get("/healthz", app.Health)

	r.Route("/api/session", func(r chi.Router) {
		r.Post("/", app.SessionCreate)
		r.Get("/", app.SessionGet)
		r.Put("/", app.SessionPut)
		r.MethodNotAllowed(app.MethodNotAllowed)
	})

	return r
}
