package handlers

import (
	"net/http"

	"github.com/fredck/torrentbot/internal/httpserver/deps"
	"github.com/fredck/torrentbot/internal/logger"
	"github.com/fredck/torrentbot/internal/statuspage"
)

// Status renders the connection snapshot as a human-readable HTML page.
// The snapshot is computed per request, never cached.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := d.Status.Status(r.Context())

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if err := statuspage.Render(w, snapshot, d.WebhookMode); err != nil {
			d.Logger.Error("failed to render status page", logger.Error(err))
		}
	}
}
