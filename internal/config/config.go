package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr      string        // ex: "0.0.0.0"
	ListenPort      string        // ex: "8080", shared by /update, /healthz and /status
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Telegram
	BotToken    string // required, startup-fatal when missing
	TelegramAPI string // Bot API base URL, overridable for tests/proxies
	PollTimeout time.Duration

	// Webhook mode (long-poll when false)
	WebhookMode   bool
	WebhookURL    string // public URL the platform pushes updates to
	WebhookSecret string // optional shared secret echoed back by the platform

	// Transmission
	TransmissionURL  string // ex: "http://localhost:9091", port 9091 assumed when absent
	TransmissionUser string // optional
	TransmissionPass string // optional

	CatalogFile string // optional YAML file overriding the built-in destination catalog
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenAddr:      getenv("WEBHOOK_LISTEN", "0.0.0.0"),
		ListenPort:      getenv("LISTEN_PORT", "8080"),
		ShutdownTimeout: mustDuration("SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LOG_LEVEL", "info"),
		PrettyLog: mustBool("PRETTY_LOG", true),

		// Telegram
		BotToken:    requireEnv("TELEGRAM_BOT_TOKEN"),
		TelegramAPI: getenv("TELEGRAM_API_URL", "https://api.telegram.org"),
		PollTimeout: mustDuration("POLL_TIMEOUT", 30*time.Second),

		// Webhook
		WebhookMode:   mustBool("WEBHOOK_MODE", false),
		WebhookURL:    getenv("WEBHOOK_URL", "https://torrent-bot.svc.fred.org.ru/update"),
		WebhookSecret: getenv("WEBHOOK_SECRET_TOKEN", ""),

		// Transmission
		TransmissionURL:  getenv("TRANSMISSION_URL", "http://localhost:9091"),
		TransmissionUser: getenv("TRANSMISSION_USER", ""),
		TransmissionPass: getenv("TRANSMISSION_PASS", ""),

		CatalogFile: getenv("CATALOG_FILE", ""),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.BotToken = "***REDACTED***"
		if cfg.TransmissionPass != "" {
			cfgCopy.TransmissionPass = "***REDACTED***"
		}
		if cfg.WebhookSecret != "" {
			cfgCopy.WebhookSecret = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// ListenHostPort returns the "host:port" the HTTP server binds to.
func (c *Config) ListenHostPort() string {
	port := strings.TrimPrefix(c.ListenPort, ":")
	return c.ListenAddr + ":" + port
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
