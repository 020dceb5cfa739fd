package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/fredck/torrentbot/internal/httpserver/deps"
	"github.com/fredck/torrentbot/internal/httpserver/handlers"
)

func init() { Register(registerStatus) }

func registerStatus(r chi.Router, d deps.Deps) {
	r.Get("/status", handlers.Status(d))
}
