// Package statuspage renders the human-readable /status page from a
// connection snapshot.
package statuspage

import (
	_ "embed"
	"html/template"
	"io"

	"github.com/fredck/torrentbot/internal/transmission"
)

//go:embed status_page.html
var pageHTML string

var page = template.Must(template.New("status").Parse(pageHTML))

type pageData struct {
	AppStatus        string
	DeliveryMode     string
	TransmissionIcon string
	TransmissionText string
	Snapshot         transmission.Snapshot
}

// Render writes the status page for a fresh snapshot. webhookMode selects
// the delivery-mode line; it never changes at runtime.
func Render(w io.Writer, s transmission.Snapshot, webhookMode bool) error {
	data := pageData{
		AppStatus:        "✅ Running",
		DeliveryMode:     "Disabled (Polling)",
		TransmissionIcon: "❌",
		TransmissionText: "Disconnected",
		Snapshot:         s,
	}
	if !s.Connected {
		data.AppStatus = "⚠️ Running (Transmission not connected)"
	}
	if webhookMode {
		data.DeliveryMode = "Enabled"
	}
	if s.Connected {
		data.TransmissionIcon = "✅"
		data.TransmissionText = "Connected"
	}
	return page.Execute(w, data)
}
