package memory

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Hashes     int `json:"hashes" yaml:"hashes"`
	SortedSets int `json:"sorted_sets" yaml:"sorted_sets"`
	Members    int `json:"members" yaml:"members"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := 0
	for _, z := range s.zsets {
		members += len(z)
	}
	return StoreState{
		Hashes:     len(s.hashes),
		SortedSets: len(s.zsets),
		Members:    members,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
