package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	StoreType   string `json:"store_type" yaml:"store_type"`
	StoreState  any    `json:"store_state,omitempty" yaml:"store_state,omitempty"`
	Searchable  bool   `json:"searchable" yaml:"searchable"`
	Leaderboard string `json:"leaderboard" yaml:"leaderboard"`
	IndexName   string `json:"index" yaml:"index"`
	ScanMatch   string `json:"scan_match" yaml:"scan_match"`
	ScanCount   int64  `json:"scan_count" yaml:"scan_count"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := ServiceState{
		StoreType:   "unknown",
		Leaderboard: s.settings.Leaderboard,
		IndexName:   s.settings.IndexName,
		ScanMatch:   s.settings.Scan.Match,
		ScanCount:   s.settings.Scan.Count,
	}
	if s.store != nil {
		state.StoreType = "store"
		if comp, ok := s.store.(introspection.Component); ok {
			state.StoreType = comp.ComponentType()
		}
		if in, ok := s.store.(introspection.Introspectable); ok {
			state.StoreState = in.State()
		}
		_, state.Searchable = s.store.(Searchable)
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
