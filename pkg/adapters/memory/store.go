// Package memory provides an in-process core.Store with Redis semantics for
// hashes, sorted sets and cursor scans. It has no secondary indexes.
package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/userkv/pkg/core"
	"github.com/aretw0/userkv/pkg/record"
)

// ErrWrongType is returned when a key holds a different kind of value.
var ErrWrongType = errors.New("WRONGTYPE operation against a key holding the wrong kind of value")

// defaultScanCount matches the store's COUNT default.
const defaultScanCount = 10

// Store implements core.Store in memory.
// All methods are safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	hashes map[string]map[string]string
	zsets  map[string]map[string]float64
}

// New creates an empty store.
func New() *Store {
	return &Store{
		hashes: make(map[string]map[string]string),
		zsets:  make(map[string]map[string]float64),
	}
}

// SetFields writes fields into the hash at key.
func (s *Store) SetFields(_ context.Context, key string, fields []record.Field) error {
	if len(fields) == 0 {
		return fmt.Errorf("hset %s: %w: no fields", key, core.ErrInvalidKey)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.zsets[key]; ok {
		return ErrWrongType
	}
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		s.hashes[key] = h
	}
	for _, f := range fields {
		h[f.Name] = f.Value
	}
	return nil
}

// GetAll returns a copy of the hash at key; a missing key yields an empty map.
func (s *Store) GetAll(_ context.Context, key string) (core.Fields, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.zsets[key]; ok {
		return nil, ErrWrongType
	}
	out := make(core.Fields, len(s.hashes[key]))
	maps.Copy(out, s.hashes[key])
	return out, nil
}

// GetField returns one field of the hash at key.
func (s *Store) GetField(_ context.Context, key, field string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.zsets[key]; ok {
		return "", ErrWrongType
	}
	v, ok := s.hashes[key][field]
	if !ok {
		return "", core.ErrNotFound
	}
	return v, nil
}

// Scan pages through all keys in lexical order. The cursor is the offset of
// the next page, which keeps cursors stable while the key set is unchanged.
func (s *Store) Scan(_ context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	if count <= 0 {
		count = defaultScanCount
	}
	if match != "" && !doublestar.ValidatePattern(match) {
		return nil, 0, fmt.Errorf("scan match %q: %w", match, doublestar.ErrBadPattern)
	}

	s.mu.RLock()
	keys := make([]string, 0, len(s.hashes)+len(s.zsets))
	for k := range s.hashes {
		keys = append(keys, k)
	}
	for k := range s.zsets {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	slices.Sort(keys)

	if match != "" {
		matched := keys[:0]
		for _, k := range keys {
			ok, err := doublestar.Match(match, k)
			if err != nil {
				return nil, 0, fmt.Errorf("scan match %q: %w", match, err)
			}
			if ok {
				matched = append(matched, k)
			}
		}
		keys = matched
	}

	total := uint64(len(keys))
	if cursor >= total {
		return []string{}, 0, nil
	}
	end := min(cursor+uint64(count), total)
	next := end
	if next >= total {
		next = 0
	}
	return slices.Clone(keys[cursor:end]), next, nil
}

// AddScore sets the score of member in the sorted set at key.
func (s *Store) AddScore(_ context.Context, key, member string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hashes[key]; ok {
		return ErrWrongType
	}
	z, ok := s.zsets[key]
	if !ok {
		z = make(map[string]float64)
		s.zsets[key] = z
	}
	z[member] = score
	return nil
}

// RevRangeWithScores returns members by descending score. Equal scores are
// ordered by descending member, and negative ranks count from the end.
func (s *Store) RevRangeWithScores(_ context.Context, key string, start, stop int64) ([]core.ScoredMember, error) {
	s.mu.RLock()
	if _, ok := s.hashes[key]; ok {
		s.mu.RUnlock()
		return nil, ErrWrongType
	}
	members := make([]core.ScoredMember, 0, len(s.zsets[key]))
	for m, sc := range s.zsets[key] {
		members = append(members, core.ScoredMember{Member: m, Score: sc})
	}
	s.mu.RUnlock()

	sort.Slice(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score > members[j].Score
		}
		return members[i].Member > members[j].Member
	})

	n := int64(len(members))
	if start < 0 {
		start = max(n+start, 0)
	}
	if stop < 0 {
		stop = n + stop
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return []core.ScoredMember{}, nil
	}
	return members[start : stop+1], nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op; the data lives as long as the Store value.
func (s *Store) Close() error { return nil }

var _ core.Store = (*Store)(nil)
