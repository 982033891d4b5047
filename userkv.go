package userkv

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/userkv/internal/platform"
	"github.com/aretw0/userkv/pkg/core"
)

// --- Types ---

// Service runs the user queries against a store.
type Service = core.Service

// Config is the complete runtime configuration.
type Config = platform.Config

// LoadOptions tells LoadConfig where to look.
type LoadOptions = platform.LoadOptions

// --- Configuration ---

// Option defines a functional option for configuring userkv.
type Option = platform.Option

// DefaultConfig targets a local server on the default port and database 0.
func DefaultConfig() Config {
	return platform.DefaultConfig()
}

// LoadConfig layers a config file, a dotenv file and the environment over the
// defaults.
func LoadConfig(lo LoadOptions) (Config, error) {
	return platform.LoadConfig(lo)
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return platform.WithConfig(cfg)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore allows injecting a custom store.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithAdapter selects the store adapter by name ("redis" or "memory").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithAddr sets the server host and port.
func WithAddr(host string, port int) Option {
	return platform.WithAddr(host, port)
}

// WithDB selects the logical database.
func WithDB(db int) Option {
	return platform.WithDB(db)
}

// WithCredentials sets the ACL username and password.
func WithCredentials(username, password string) Option {
	return platform.WithCredentials(username, password)
}

// WithDialTimeout bounds connection setup.
func WithDialTimeout(d time.Duration) Option {
	return platform.WithDialTimeout(d)
}

// WithSettings replaces the query settings.
func WithSettings(s core.Settings) Option {
	return platform.WithSettings(s)
}

// WithScanCount sets the batch size hint of the even-users scan.
func WithScanCount(n int64) Option {
	return platform.WithScanCount(n)
}

// WithLeaderboard sets the sorted set the scores live in.
func WithLeaderboard(key string) Option {
	return platform.WithLeaderboard(key)
}

// WithIndexName sets the name of the user search index.
func WithIndexName(name string) Option {
	return platform.WithIndexName(name)
}

// WithoutPing skips the reachability check in New. Connection problems then
// surface on the first query.
func WithoutPing() Option {
	return platform.WithoutPing()
}

// --- Factory ---

// New connects to the configured store and returns a Service. The caller
// must Close it.
func New(ctx context.Context, opts ...Option) (*Service, error) {
	return platform.New(ctx, opts...)
}
