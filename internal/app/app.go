package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fredck/torrentbot/internal/bot"
	"github.com/fredck/torrentbot/internal/catalog"
	"github.com/fredck/torrentbot/internal/config"
	"github.com/fredck/torrentbot/internal/httpserver"
	"github.com/fredck/torrentbot/internal/httpserver/deps"
	"github.com/fredck/torrentbot/internal/logger"
	"github.com/fredck/torrentbot/internal/session"
	"github.com/fredck/torrentbot/internal/telegram"
	"github.com/fredck/torrentbot/internal/transmission"
	"github.com/fredck/torrentbot/internal/transport"
	"github.com/fredck/torrentbot/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	gateway  *transmission.Gateway
	telegram *telegram.Client
	poller   *transport.Poller
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Destination catalog: optional file, compiled-in defaults otherwise.
	// The catalog is immutable for the process lifetime.
	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		loaded, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			loggerClient.Error("failed to load catalog file, using built-in categories",
				logger.String("file", cfg.CatalogFile),
				logger.Error(err))
		} else {
			cat = loaded
			loggerClient.Info("catalog loaded",
				logger.String("file", cfg.CatalogFile),
				logger.Int("entries", len(cat)))
		}
	}

	// Daemon gateway: a failed connection only degrades, never aborts.
	loggerClient.Infof("Connecting to Transmission at %s", cfg.TransmissionURL)
	gateway := transmission.New(transmission.Options{
		URL:      cfg.TransmissionURL,
		Username: cfg.TransmissionUser,
		Password: cfg.TransmissionPass,
	}, cat, loggerClient)
	if !gateway.Connected() {
		loggerClient.Warn("starting without a Transmission connection, submissions will fail until it returns")
	}

	tg := telegram.NewClient(nil, cfg.TelegramAPI, cfg.BotToken)
	sessions := session.NewStore()
	controller := bot.New(gateway, sessions, tg, loggerClient)

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		WebhookMode:   cfg.WebhookMode,
		WebhookSecret: cfg.WebhookSecret,
		Status:        gateway,
		Updates:       controller,
	}

	server := httpserver.New(cfg, loggerClient, d)

	var poller *transport.Poller
	if !cfg.WebhookMode {
		poller = transport.NewPoller(tg, controller, cfg.PollTimeout, loggerClient)
	}

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   server,
		gateway:  gateway,
		telegram: tg,
		poller:   poller,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Torrent Bot v%s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if me, err := a.telegram.GetMe(ctx); err != nil {
		a.logger.Warn("failed to verify bot identity", logger.Error(err))
	} else {
		a.logger.Info("bot identity verified", logger.String("username", me.Username))
	}

	if a.cfg.WebhookMode {
		a.logger.Infof("Starting in webhook mode on %s", a.cfg.ListenHostPort())
		a.logger.Infof("Webhook URL: %s", a.cfg.WebhookURL)

		if a.cfg.WebhookSecret == "" {
			a.logger.Warn("WEBHOOK_SECRET_TOKEN is not set, the webhook endpoint is not secured")
			a.logger.Warn("set WEBHOOK_SECRET_TOKEN to have the platform authenticate its pushes")
		}

		if err := a.telegram.SetWebhook(ctx, a.cfg.WebhookURL, telegram.AllowedUpdates, a.cfg.WebhookSecret); err != nil {
			return fmt.Errorf("failed to register webhook: %w", err)
		}
		a.logger.Info("webhook registered", logger.String("url", a.cfg.WebhookURL))
	} else {
		a.logger.Info("Starting in polling mode...")
	}

	errCh := make(chan error, 2)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()
	if a.poller != nil {
		go func() {
			if err := a.poller.Run(ctx); err != nil {
				errCh <- fmt.Errorf("update poller error: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	// Drain in-flight HTTP requests before releasing the socket.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		a.logger.Warnf("failed to stop http server: %v", err)
	}

	// Deregister the push target last so the platform stops delivering to
	// a dead endpoint. Failure here is logged, not fatal.
	if a.cfg.WebhookMode {
		unhookCtx, unhookCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer unhookCancel()
		if err := a.telegram.DeleteWebhook(unhookCtx); err != nil {
			a.logger.Warnf("failed to remove webhook registration: %v", err)
		} else {
			a.logger.Info("webhook removed")
		}
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ Torrent Bot stopped cleanly")
	return nil
}
