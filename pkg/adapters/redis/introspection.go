package redis

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Addr       string `json:"addr" yaml:"addr"`
	DB         int    `json:"db" yaml:"db"`
	Username   string `json:"username,omitempty" yaml:"username,omitempty"`
	TotalConns uint32 `json:"total_conns" yaml:"total_conns"`
	IdleConns  uint32 `json:"idle_conns" yaml:"idle_conns"`
	Hits       uint32 `json:"hits" yaml:"hits"`
	Misses     uint32 `json:"misses" yaml:"misses"`
	Timeouts   uint32 `json:"timeouts" yaml:"timeouts"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	stats := s.client.PoolStats()
	return StoreState{
		Addr:       s.config.Addr,
		DB:         s.config.DB,
		Username:   s.config.Username,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "redis"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
