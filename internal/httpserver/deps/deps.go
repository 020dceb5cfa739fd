package deps

import (
	"context"
	"time"

	"github.com/fredck/torrentbot/internal/logger"
	"github.com/fredck/torrentbot/internal/telegram"
	"github.com/fredck/torrentbot/internal/transmission"
)

// StatusSource produces a fresh daemon connection snapshot per call.
type StatusSource interface {
	Status(ctx context.Context) transmission.Snapshot
}

// UpdateHandler consumes one decoded platform update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u telegram.Update) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	WebhookMode   bool   // /update is mounted only in webhook mode
	WebhookSecret string // optional shared secret echoed by the platform

	Status  StatusSource  // daemon gateway
	Updates UpdateHandler // conversation controller
}
