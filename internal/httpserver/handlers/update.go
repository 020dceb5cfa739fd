package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fredck/torrentbot/internal/httpserver/deps"
	"github.com/fredck/torrentbot/internal/logger"
	"github.com/fredck/torrentbot/internal/telegram"
)

// maxUpdateBytes caps inbound webhook bodies; real Bot API updates are
// far smaller.
const maxUpdateBytes = 1 << 20

// Update receives webhook pushes from the platform. When a secret token
// is configured the echoed header must match byte-for-byte before the
// body is even read. Any processing failure produces a generic response;
// internal detail never reaches the caller.
func Update(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.WebhookSecret != "" {
			if r.Header.Get(telegram.SecretTokenHeader) != d.WebhookSecret {
				d.Logger.Warn("invalid webhook secret token",
					logger.String("remote_ip", r.RemoteAddr))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		var update telegram.Update
		body := http.MaxBytesReader(w, r.Body, maxUpdateBytes)
		if err := json.NewDecoder(body).Decode(&update); err != nil {
			d.Logger.Error("failed to decode webhook update", logger.Error(err))
			http.Error(w, "Error", http.StatusInternalServerError)
			return
		}

		if err := d.Updates.HandleUpdate(r.Context(), update); err != nil {
			d.Logger.Error("failed to process webhook update",
				logger.Int64("update_id", update.UpdateID),
				logger.Error(err))
			http.Error(w, "Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	}
}
