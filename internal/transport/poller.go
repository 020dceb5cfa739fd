// Package transport drives update delivery in long-poll mode. (Webhook
// mode has no loop of its own: the platform pushes straight into the HTTP
// server's /update handler.)
package transport

import (
	"context"
	"time"

	"github.com/fredck/torrentbot/internal/logger"
	"github.com/fredck/torrentbot/internal/telegram"
)

// errPause is how long the loop sleeps after a real poll failure before
// retrying, so a down platform does not turn into a busy loop.
const errPause = 3 * time.Second

// UpdateSource is the pull side of the chat platform.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration, allowedUpdates []string) ([]telegram.Update, int64, error)
	DeleteWebhook(ctx context.Context) error
}

// Handler consumes one decoded platform update.
type Handler interface {
	HandleUpdate(ctx context.Context, u telegram.Update) error
}

// Poller repeatedly long-polls for updates and hands them to the handler
// one at a time, in arrival order. The platform's update cursor provides
// ordering and at-least-once delivery.
type Poller struct {
	api     UpdateSource
	handler Handler
	timeout time.Duration
	logger  logger.Logger
}

func NewPoller(api UpdateSource, handler Handler, timeout time.Duration, loggerClient logger.Logger) *Poller {
	return &Poller{
		api:     api,
		handler: handler,
		timeout: timeout,
		logger:  loggerClient,
	}
}

// Run blocks until ctx is canceled. A handler failure is logged and the
// loop moves on; only cancellation stops it.
func (p *Poller) Run(ctx context.Context) error {
	// A leftover webhook registration makes getUpdates refuse to serve.
	if err := p.api.DeleteWebhook(ctx); err != nil {
		p.logger.Warn("failed to clear webhook registration before polling", logger.Error(err))
	}

	var offset int64
	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, next, err := p.api.GetUpdates(ctx, offset, p.timeout, telegram.AllowedUpdates)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if telegram.IsPollTimeout(err) {
				continue
			}
			p.logger.Error("failed to poll for updates", logger.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(errPause):
			}
			continue
		}
		offset = next

		for _, u := range updates {
			if err := p.handler.HandleUpdate(ctx, u); err != nil {
				p.logger.Error("failed to process update",
					logger.Int64("update_id", u.UpdateID),
					logger.Error(err))
			}
		}
	}
}
