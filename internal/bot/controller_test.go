package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/fredck/torrentbot/internal/catalog"
	"github.com/fredck/torrentbot/internal/logger"
	"github.com/fredck/torrentbot/internal/session"
	"github.com/fredck/torrentbot/internal/telegram"
	"github.com/fredck/torrentbot/internal/transmission"
)

type submitCall struct {
	magnetLink  string
	downloadDir string
}

type fakeGateway struct {
	destinations catalog.Catalog
	submitOK     bool
	snapshot     transmission.Snapshot
	submits      []submitCall
}

func (g *fakeGateway) Destinations(ctx context.Context) catalog.Catalog { return g.destinations }

func (g *fakeGateway) Submit(ctx context.Context, magnetLink, downloadDir string) bool {
	g.submits = append(g.submits, submitCall{magnetLink, downloadDir})
	return g.submitOK
}

func (g *fakeGateway) Status(ctx context.Context) transmission.Snapshot { return g.snapshot }

type sentMessage struct {
	chatID   int64
	text     string
	keyboard *telegram.InlineKeyboardMarkup
}

type editedMessage struct {
	chatID    int64
	messageID int64
	text      string
}

type fakeSender struct {
	sent     []sentMessage
	edited   []editedMessage
	answered []string
}

func (s *fakeSender) SendMessage(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) error {
	s.sent = append(s.sent, sentMessage{chatID, text, keyboard})
	return nil
}

func (s *fakeSender) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	s.edited = append(s.edited, editedMessage{chatID, messageID, text})
	return nil
}

func (s *fakeSender) AnswerCallbackQuery(ctx context.Context, id string) error {
	s.answered = append(s.answered, id)
	return nil
}

func testCatalog() catalog.Catalog {
	return catalog.Catalog{
		{Label: "🎬 Movies", Path: "/downloads/movies"},
		{Label: "📚 Books", Path: "/downloads/books"},
	}
}

func newTestController(gw *fakeGateway) (*Controller, *fakeSender, *session.Store) {
	sender := &fakeSender{}
	sessions := session.NewStore()
	c := New(gw, sessions, sender, logger.New("error", false))
	return c, sender, sessions
}

func textUpdate(chatID int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			MessageID: 100,
			Chat:      &telegram.Chat{ID: chatID, Type: "private"},
			Text:      text,
		},
	}
}

func selectionUpdate(chatID int64, data string) telegram.Update {
	return telegram.Update{
		UpdateID: 2,
		CallbackQuery: &telegram.CallbackQuery{
			ID:   "cb1",
			Data: data,
			Message: &telegram.Message{
				MessageID: 101,
				Chat:      &telegram.Chat{ID: chatID, Type: "private"},
			},
		},
	}
}

func TestTextWithoutMagnetLink(t *testing.T) {
	c, sender, sessions := newTestController(&fakeGateway{destinations: testCatalog()})

	if err := c.HandleUpdate(context.Background(), textUpdate(1, "hello there")); err != nil {
		t.Fatalf("HandleUpdate() error = %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	if sender.sent[0].text != noLinkText {
		t.Errorf("reply = %q, want guidance", sender.sent[0].text)
	}
	if sessions.Len() != 0 {
		t.Errorf("session store has %d entries, want 0", sessions.Len())
	}
}

func TestTextWithMagnetLinkOffersCatalog(t *testing.T) {
	c, sender, sessions := newTestController(&fakeGateway{destinations: testCatalog()})

	update := textUpdate(1, "grab this magnet:?xt=urn:btih:ABC123 please")
	if err := c.HandleUpdate(context.Background(), update); err != nil {
		t.Fatalf("HandleUpdate() error = %v", err)
	}

	if sessions.Len() != 1 {
		t.Fatalf("session store has %d entries, want 1", sessions.Len())
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	kb := sender.sent[0].keyboard
	if kb == nil {
		t.Fatal("reply carried no keyboard")
	}
	if len(kb.InlineKeyboard) != len(testCatalog()) {
		t.Fatalf("keyboard has %d rows, want one per catalog entry (%d)",
			len(kb.InlineKeyboard), len(testCatalog()))
	}
	for i, e := range testCatalog() {
		row := kb.InlineKeyboard[i]
		if len(row) != 1 {
			t.Fatalf("row %d has %d buttons, want 1", i, len(row))
		}
		if row[0].Text != e.Label {
			t.Errorf("row %d label = %q, want %q (catalog order)", i, row[0].Text, e.Label)
		}
		if row[0].CallbackData != CallbackPrefix+e.Path {
			t.Errorf("row %d payload = %q, want %q", i, row[0].CallbackData, CallbackPrefix+e.Path)
		}
	}
}

func TestSelectionSubmitsExactlyOnce(t *testing.T) {
	gw := &fakeGateway{destinations: testCatalog(), submitOK: true}
	c, sender, _ := newTestController(gw)
	ctx := context.Background()

	if err := c.HandleUpdate(ctx, textUpdate(1, "magnet:?xt=urn:btih:ABC123")); err != nil {
		t.Fatalf("text update error = %v", err)
	}
	if err := c.HandleUpdate(ctx, selectionUpdate(1, "download:/downloads/movies")); err != nil {
		t.Fatalf("selection update error = %v", err)
	}

	if len(gw.submits) != 1 {
		t.Fatalf("gateway received %d submit calls, want 1", len(gw.submits))
	}
	if gw.submits[0] != (submitCall{"magnet:?xt=urn:btih:ABC123", "/downloads/movies"}) {
		t.Errorf("submit call = %+v, want exact link and path", gw.submits[0])
	}
	if len(sender.answered) != 1 {
		t.Errorf("callback answered %d times, want 1", len(sender.answered))
	}
	if len(sender.edited) != 1 || !strings.HasPrefix(sender.edited[0].text, "✅") {
		t.Errorf("result reply = %+v, want success edit", sender.edited)
	}
	if !strings.Contains(sender.edited[0].text, "/downloads/movies") {
		t.Errorf("success reply does not mention destination: %q", sender.edited[0].text)
	}
}

func TestSelectionWithoutPendingLink(t *testing.T) {
	c, sender, _ := newTestController(&fakeGateway{destinations: testCatalog(), submitOK: true})

	if err := c.HandleUpdate(context.Background(), selectionUpdate(1, "download:/downloads/movies")); err != nil {
		t.Fatalf("HandleUpdate() error = %v", err)
	}

	if len(sender.edited) != 1 || sender.edited[0].text != noPendingLinkText {
		t.Errorf("reply = %+v, want no-pending-link guidance", sender.edited)
	}
}

func TestSecondSelectionFindsNothing(t *testing.T) {
	gw := &fakeGateway{destinations: testCatalog(), submitOK: true}
	c, sender, _ := newTestController(gw)
	ctx := context.Background()

	if err := c.HandleUpdate(ctx, textUpdate(1, "magnet:?xt=urn:btih:ABC123")); err != nil {
		t.Fatalf("text update error = %v", err)
	}
	if err := c.HandleUpdate(ctx, selectionUpdate(1, "download:/downloads/movies")); err != nil {
		t.Fatalf("first selection error = %v", err)
	}
	if err := c.HandleUpdate(ctx, selectionUpdate(1, "download:/downloads/books")); err != nil {
		t.Fatalf("second selection error = %v", err)
	}

	if len(gw.submits) != 1 {
		t.Fatalf("gateway received %d submit calls, want 1 (take is destructive)", len(gw.submits))
	}
	last := sender.edited[len(sender.edited)-1]
	if last.text != noPendingLinkText {
		t.Errorf("second selection reply = %q, want no-pending-link guidance", last.text)
	}
}

func TestMalformedSelectionPayload(t *testing.T) {
	gw := &fakeGateway{destinations: testCatalog(), submitOK: true}
	c, sender, sessions := newTestController(gw)
	ctx := context.Background()

	if err := c.HandleUpdate(ctx, textUpdate(1, "magnet:?xt=urn:btih:ABC123")); err != nil {
		t.Fatalf("text update error = %v", err)
	}
	if err := c.HandleUpdate(ctx, selectionUpdate(1, "something:else")); err != nil {
		t.Fatalf("selection update error = %v", err)
	}

	if len(gw.submits) != 0 {
		t.Errorf("gateway received %d submit calls, want 0", len(gw.submits))
	}
	if len(sender.edited) != 1 || sender.edited[0].text != invalidSelectionText {
		t.Errorf("reply = %+v, want invalid-selection", sender.edited)
	}
	// The pending link survives a malformed selection.
	if sessions.Len() != 1 {
		t.Errorf("session store has %d entries, want 1", sessions.Len())
	}
}

func TestSubmitFailureReply(t *testing.T) {
	gw := &fakeGateway{destinations: testCatalog(), submitOK: false}
	c, sender, sessions := newTestController(gw)
	ctx := context.Background()

	if err := c.HandleUpdate(ctx, textUpdate(1, "magnet:?xt=urn:btih:ABC123")); err != nil {
		t.Fatalf("text update error = %v", err)
	}
	if err := c.HandleUpdate(ctx, selectionUpdate(1, "download:/downloads/movies")); err != nil {
		t.Fatalf("selection update error = %v", err)
	}

	if len(sender.edited) != 1 || sender.edited[0].text != submitFailedText {
		t.Errorf("reply = %+v, want failure text", sender.edited)
	}
	// Session entry is discarded on failure too.
	if sessions.Len() != 0 {
		t.Errorf("session store has %d entries, want 0", sessions.Len())
	}
}

func TestNewLinkOverwritesPending(t *testing.T) {
	gw := &fakeGateway{destinations: testCatalog(), submitOK: true}
	c, _, _ := newTestController(gw)
	ctx := context.Background()

	if err := c.HandleUpdate(ctx, textUpdate(1, "magnet:?xt=urn:btih:OLD")); err != nil {
		t.Fatalf("first text update error = %v", err)
	}
	if err := c.HandleUpdate(ctx, textUpdate(1, "magnet:?xt=urn:btih:NEW")); err != nil {
		t.Fatalf("second text update error = %v", err)
	}
	if err := c.HandleUpdate(ctx, selectionUpdate(1, "download:/downloads/books")); err != nil {
		t.Fatalf("selection update error = %v", err)
	}

	if len(gw.submits) != 1 || gw.submits[0].magnetLink != "magnet:?xt=urn:btih:NEW" {
		t.Errorf("submits = %+v, want single call with latest link", gw.submits)
	}
}

func TestMultipleLinksUsesFirst(t *testing.T) {
	gw := &fakeGateway{destinations: testCatalog(), submitOK: true}
	c, _, _ := newTestController(gw)
	ctx := context.Background()

	text := "magnet:?xt=urn:btih:FIRST and magnet:?xt=urn:btih:SECOND"
	if err := c.HandleUpdate(ctx, textUpdate(1, text)); err != nil {
		t.Fatalf("text update error = %v", err)
	}
	if err := c.HandleUpdate(ctx, selectionUpdate(1, "download:/downloads/movies")); err != nil {
		t.Fatalf("selection update error = %v", err)
	}

	if gw.submits[0].magnetLink != "magnet:?xt=urn:btih:FIRST" {
		t.Errorf("submitted %q, want first link", gw.submits[0].magnetLink)
	}
}

func TestCommands(t *testing.T) {
	gw := &fakeGateway{
		destinations: testCatalog(),
		snapshot:     transmission.Snapshot{Connected: true, Version: "4.0.5", DownloadDir: "/downloads", ActiveTorrents: 2},
	}
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "start", text: "/start", want: "Welcome"},
		{name: "help", text: "/help", want: "How to use"},
		{name: "status", text: "/status", want: "Connected"},
		{name: "group suffix", text: "/status@torrent_bot", want: "Connected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, sender, _ := newTestController(gw)
			if err := c.HandleUpdate(context.Background(), textUpdate(1, tt.text)); err != nil {
				t.Fatalf("HandleUpdate() error = %v", err)
			}
			if len(sender.sent) != 1 {
				t.Fatalf("sent %d messages, want 1", len(sender.sent))
			}
			if !strings.Contains(sender.sent[0].text, tt.want) {
				t.Errorf("reply = %q, want it to contain %q", sender.sent[0].text, tt.want)
			}
		})
	}
}

func TestUnknownCommandIgnored(t *testing.T) {
	c, sender, _ := newTestController(&fakeGateway{destinations: testCatalog()})

	if err := c.HandleUpdate(context.Background(), textUpdate(1, "/frobnicate")); err != nil {
		t.Fatalf("HandleUpdate() error = %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent %d messages for unknown command, want 0", len(sender.sent))
	}
}

func TestChatsDoNotCrossContaminate(t *testing.T) {
	gw := &fakeGateway{destinations: testCatalog(), submitOK: true}
	c, _, _ := newTestController(gw)
	ctx := context.Background()

	if err := c.HandleUpdate(ctx, textUpdate(1, "magnet:?xt=urn:btih:ONE")); err != nil {
		t.Fatalf("chat 1 text error = %v", err)
	}
	if err := c.HandleUpdate(ctx, textUpdate(2, "magnet:?xt=urn:btih:TWO")); err != nil {
		t.Fatalf("chat 2 text error = %v", err)
	}
	if err := c.HandleUpdate(ctx, selectionUpdate(2, "download:/downloads/books")); err != nil {
		t.Fatalf("chat 2 selection error = %v", err)
	}
	if err := c.HandleUpdate(ctx, selectionUpdate(1, "download:/downloads/movies")); err != nil {
		t.Fatalf("chat 1 selection error = %v", err)
	}

	if len(gw.submits) != 2 {
		t.Fatalf("gateway received %d submit calls, want 2", len(gw.submits))
	}
	if gw.submits[0] != (submitCall{"magnet:?xt=urn:btih:TWO", "/downloads/books"}) {
		t.Errorf("chat 2 submit = %+v", gw.submits[0])
	}
	if gw.submits[1] != (submitCall{"magnet:?xt=urn:btih:ONE", "/downloads/movies"}) {
		t.Errorf("chat 1 submit = %+v", gw.submits[1])
	}
}
