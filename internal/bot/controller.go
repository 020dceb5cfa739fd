// Package bot implements the conversation state machine. Each chat is
// either idle or awaiting a destination choice for the last magnet link it
// sent; a text message carrying a link moves it to awaiting, a resolved
// (or rejected) selection moves it back to idle.
package bot

import (
	"context"
	"strings"

	"github.com/fredck/torrentbot/internal/catalog"
	"github.com/fredck/torrentbot/internal/logger"
	"github.com/fredck/torrentbot/internal/magnet"
	"github.com/fredck/torrentbot/internal/session"
	"github.com/fredck/torrentbot/internal/telegram"
	"github.com/fredck/torrentbot/internal/transmission"
)

// CallbackPrefix marks a destination-choice payload. The remainder of the
// payload is the destination path verbatim, so the selection round-trips
// through the platform without re-querying the catalog. Filesystem paths
// never start with the prefix, so payloads cannot be ambiguous.
const CallbackPrefix = "download:"

// Gateway is the daemon boundary the controller drives.
type Gateway interface {
	Destinations(ctx context.Context) catalog.Catalog
	Submit(ctx context.Context, magnetLink, downloadDir string) bool
	Status(ctx context.Context) transmission.Snapshot
}

// Sender is the outbound half of the chat platform.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) error
	EditMessageText(ctx context.Context, chatID, messageID int64, text string) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error
}

// Controller reacts to inbound updates and produces replies. It holds no
// per-update state of its own; the pending selection lives in the session
// store.
type Controller struct {
	gateway  Gateway
	sessions *session.Store
	sender   Sender
	logger   logger.Logger
}

func New(gw Gateway, sessions *session.Store, sender Sender, loggerClient logger.Logger) *Controller {
	return &Controller{
		gateway:  gw,
		sessions: sessions,
		sender:   sender,
		logger:   loggerClient,
	}
}

// HandleUpdate dispatches one platform update. Updates of other kinds are
// ignored. The returned error covers reply delivery only; daemon failures
// surface as failure replies, not errors.
func (c *Controller) HandleUpdate(ctx context.Context, u telegram.Update) error {
	switch {
	case u.Message != nil && u.Message.Chat != nil:
		return c.handleMessage(ctx, u.Message)
	case u.CallbackQuery != nil:
		return c.handleCallback(ctx, u.CallbackQuery)
	default:
		c.logger.Debug("ignoring update of unknown kind", logger.Int64("update_id", u.UpdateID))
		return nil
	}
}

func (c *Controller) handleMessage(ctx context.Context, msg *telegram.Message) error {
	chatID := msg.Chat.ID
	text := msg.Text

	if cmd, ok := command(text); ok {
		switch cmd {
		case "start":
			return c.sender.SendMessage(ctx, chatID, welcomeText, nil)
		case "help":
			return c.sender.SendMessage(ctx, chatID, helpText, nil)
		case "status":
			return c.sender.SendMessage(ctx, chatID, statusText(c.gateway.Status(ctx)), nil)
		default:
			// Unknown commands get no reply, matching the platform
			// convention of reserving "/" for explicit commands.
			return nil
		}
	}

	links := magnet.Extract(text)
	if len(links) == 0 {
		return c.sender.SendMessage(ctx, chatID, noLinkText, nil)
	}

	// Policy: only the first link of a message is handled. Extra links
	// are dropped, not queued.
	link := links[0]
	if len(links) > 1 {
		c.logger.Warn("message carried multiple magnet links, using the first",
			logger.Int64("chat_id", chatID),
			logger.Int("links", len(links)))
	}

	unlock := c.sessions.Lock(chatID)
	defer unlock()

	c.sessions.Put(chatID, link)

	destinations := c.gateway.Destinations(ctx)
	keyboard := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: make([][]telegram.InlineKeyboardButton, 0, len(destinations)),
	}
	for _, e := range destinations {
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, []telegram.InlineKeyboardButton{
			{Text: e.Label, CallbackData: CallbackPrefix + e.Path},
		})
	}

	return c.sender.SendMessage(ctx, chatID, chooseDestinationText, keyboard)
}

func (c *Controller) handleCallback(ctx context.Context, query *telegram.CallbackQuery) error {
	if err := c.sender.AnswerCallbackQuery(ctx, query.ID); err != nil {
		c.logger.Warn("failed to answer callback query", logger.Error(err))
	}

	if query.Message == nil || query.Message.Chat == nil {
		c.logger.Warn("callback query without originating message, dropping",
			logger.String("callback_id", query.ID))
		return nil
	}
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	if !strings.HasPrefix(query.Data, CallbackPrefix) {
		return c.sender.EditMessageText(ctx, chatID, messageID, invalidSelectionText)
	}
	downloadDir := strings.TrimPrefix(query.Data, CallbackPrefix)

	unlock := c.sessions.Lock(chatID)
	defer unlock()

	link, ok := c.sessions.Take(chatID)
	if !ok {
		return c.sender.EditMessageText(ctx, chatID, messageID, noPendingLinkText)
	}

	if c.gateway.Submit(ctx, link, downloadDir) {
		return c.sender.EditMessageText(ctx, chatID, messageID, submitOKText(downloadDir))
	}
	return c.sender.EditMessageText(ctx, chatID, messageID, submitFailedText)
}

// command extracts a "/name" command from the start of a message,
// tolerating the "@botname" suffix used in group chats.
func command(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", false
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}
	return name, name != ""
}
