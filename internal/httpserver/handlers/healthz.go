package handlers

import (
	"net/http"

	"github.com/fredck/torrentbot/internal/httpserver/deps"
)

// Healthz always answers OK while the process is alive.
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte("OK"))
	}
}
