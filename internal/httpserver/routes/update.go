package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/fredck/torrentbot/internal/httpserver/deps"
	"github.com/fredck/torrentbot/internal/httpserver/handlers"
)

func init() { Register(registerUpdate) }

// The webhook target exists only in webhook mode; in long-poll mode the
// server serves just /healthz and /status.
func registerUpdate(r chi.Router, d deps.Deps) {
	if !d.WebhookMode {
		return
	}
	r.Post("/update", handlers.Update(d))
}
