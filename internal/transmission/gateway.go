// Package transmission is the single point of contact with the
// Transmission daemon. Every method degrades instead of failing: a daemon
// that is down, slow or misconfigured produces fallback values and log
// lines, never an error that could crash an update handler.
package transmission

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/hekmon/transmissionrpc/v3"

	"github.com/fredck/torrentbot/internal/catalog"
	"github.com/fredck/torrentbot/internal/logger"
)

// DefaultPort is assumed when TRANSMISSION_URL carries no explicit port.
const DefaultPort = "9091"

// rpcPath is Transmission's fixed RPC endpoint path.
const rpcPath = "/transmission/rpc"

const probeTimeout = 10 * time.Second

// Options configure the connection to the daemon.
type Options struct {
	URL      string // ex: "http://localhost:9091"
	Username string // optional
	Password string // optional
}

// Snapshot is the daemon connection status, computed on demand and never
// cached.
type Snapshot struct {
	Connected      bool
	Error          string
	Version        string
	DownloadDir    string
	ActiveTorrents int
}

// rpcClient is the subset of *transmissionrpc.Client the gateway uses.
// Tests substitute a fake.
type rpcClient interface {
	SessionArgumentsGetAll(ctx context.Context) (transmissionrpc.SessionArguments, error)
	TorrentGetAll(ctx context.Context) ([]transmissionrpc.Torrent, error)
	TorrentAdd(ctx context.Context, payload transmissionrpc.TorrentAddPayload) (transmissionrpc.Torrent, error)
}

// Gateway owns the daemon connection and the destination catalog.
// The client field is set once by Connect before any server starts and is
// read-only afterwards; nil means "daemon unavailable".
type Gateway struct {
	opts    Options
	client  rpcClient
	catalog catalog.Catalog
	logger  logger.Logger
}

// New builds a gateway and attempts an initial connection. A failed
// connection is logged and leaves the gateway in degraded mode; it is
// never fatal.
func New(opts Options, cat catalog.Catalog, loggerClient logger.Logger) *Gateway {
	g := &Gateway{
		opts:    opts,
		catalog: cat,
		logger:  loggerClient,
	}
	g.Connect(context.Background())
	return g
}

// Connect resolves the configured endpoint, builds the RPC client and
// probes the daemon session. On any failure the gateway stays
// disconnected and subsequent calls fall back gracefully.
func (g *Gateway) Connect(ctx context.Context) {
	endpoint, err := resolveEndpoint(g.opts.URL, g.opts.Username, g.opts.Password)
	if err != nil {
		g.logger.Error("failed to resolve transmission endpoint",
			logger.String("url", g.opts.URL),
			logger.Error(err))
		return
	}

	client, err := transmissionrpc.New(endpoint, nil)
	if err != nil {
		g.logger.Error("failed to build transmission client", logger.Error(err))
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if _, err := client.SessionArgumentsGetAll(probeCtx); err != nil {
		g.logger.Error("failed to connect to transmission",
			logger.String("host", endpoint.Host),
			logger.Error(err))
		return
	}

	g.client = client
	g.logger.Infof("Connected to Transmission at %s", endpoint.Host)
}

// Connected reports whether the initial connection succeeded.
func (g *Gateway) Connected() bool {
	return g.client != nil
}

// Destinations returns the destination catalog. The daemon's session info
// does not enumerate per-category directories, so the configured catalog
// is authoritative; when connected the session is probed so a daemon that
// went away since startup is at least logged.
func (g *Gateway) Destinations(ctx context.Context) catalog.Catalog {
	if g.client == nil {
		g.logger.Warn("transmission client not available, using fallback catalog")
		return g.catalog
	}

	if args, err := g.client.SessionArgumentsGetAll(ctx); err != nil {
		g.logger.Error("failed to read transmission session info", logger.Error(err))
	} else {
		g.logger.Debug("transmission session probed",
			logger.String("download_root", strDeref(args.DownloadDir)))
	}
	return g.catalog
}

// Submit adds a magnet link to the daemon with an explicit download
// directory. It returns true only once the daemon has acknowledged the
// torrent. The call is not idempotent: submitting the same link twice
// creates two jobs.
func (g *Gateway) Submit(ctx context.Context, magnetLink, downloadDir string) bool {
	if g.client == nil {
		g.logger.Error("transmission client not available, cannot add torrent")
		return false
	}

	torrent, err := g.client.TorrentAdd(ctx, transmissionrpc.TorrentAddPayload{
		Filename:    &magnetLink,
		DownloadDir: &downloadDir,
	})
	if err != nil {
		g.logger.Error("failed to add torrent",
			logger.String("download_dir", downloadDir),
			logger.Error(err))
		return false
	}

	g.logger.Info("torrent added",
		logger.String("name", strDeref(torrent.Name)),
		logger.String("download_dir", downloadDir))
	return true
}

// Status returns a fresh connection snapshot. Failures end up in the
// Error field; the method itself never fails.
func (g *Gateway) Status(ctx context.Context) Snapshot {
	if g.client == nil {
		return Snapshot{Error: "transmission client not initialized"}
	}

	args, err := g.client.SessionArgumentsGetAll(ctx)
	if err != nil {
		return Snapshot{Error: err.Error()}
	}
	torrents, err := g.client.TorrentGetAll(ctx)
	if err != nil {
		return Snapshot{Error: err.Error()}
	}

	return Snapshot{
		Connected:      true,
		Version:        strDeref(args.Version),
		DownloadDir:    strDeref(args.DownloadDir),
		ActiveTorrents: len(torrents),
	}
}

// resolveEndpoint turns the URL-shaped config value into the full RPC
// endpoint, defaulting the port and path and attaching credentials.
func resolveEndpoint(rawURL, username, password string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid transmission url %q: %w", rawURL, err)
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("transmission url %q has no host", rawURL)
	}
	if u.Port() == "" {
		u.Host = u.Hostname() + ":" + DefaultPort
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = rpcPath
	}
	if username != "" {
		u.User = url.UserPassword(username, password)
	}
	return u, nil
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
