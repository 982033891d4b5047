package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/userkv/pkg/core"
)

// options holds the internal configuration for the userkv service.
type options struct {
	store       core.Store
	logger      *slog.Logger
	config      Config
	dialTimeout time.Duration
	skipPing    bool
}

// Option defines a functional option for configuring userkv.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		config:      DefaultConfig(),
		dialTimeout: 5 * time.Second,
	}
}

// WithConfig replaces the whole configuration, typically one built by
// LoadConfig. Options applied after it still override single values.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithLogger sets the logger for the service and its store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore injects a ready store (e.g. a mock). The adapter and
// connection settings are ignored when it is set.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAdapter selects the store adapter by name ("redis" or "memory").
// Defaults to "redis".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.config.Adapter = name
	}
}

// WithAddr sets the server host and port.
func WithAddr(host string, port int) Option {
	return func(o *options) {
		o.config.Connection.Host = host
		o.config.Connection.Port = port
	}
}

// WithDB selects the logical database.
func WithDB(db int) Option {
	return func(o *options) {
		o.config.Connection.DB = db
	}
}

// WithCredentials sets the ACL username and password.
func WithCredentials(username, password string) Option {
	return func(o *options) {
		o.config.Connection.Username = username
		o.config.Connection.Password = password
	}
}

// WithDialTimeout bounds connection setup. Zero keeps the client default.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = d
	}
}

// WithSettings replaces the query settings.
func WithSettings(s core.Settings) Option {
	return func(o *options) {
		o.config.Settings = s
	}
}

// WithScanCount sets the batch size hint of the even-users scan.
func WithScanCount(n int64) Option {
	return func(o *options) {
		o.config.Settings.Scan.Count = n
	}
}

// WithLeaderboard sets the sorted set the scores live in.
func WithLeaderboard(key string) Option {
	return func(o *options) {
		o.config.Settings.Leaderboard = key
	}
}

// WithIndexName sets the name of the user search index.
func WithIndexName(name string) Option {
	return func(o *options) {
		o.config.Settings.IndexName = name
	}
}

// WithoutPing skips the reachability check in Init. The first command then
// reports connection problems instead.
func WithoutPing() Option {
	return func(o *options) {
		o.skipPing = true
	}
}
