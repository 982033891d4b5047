package core

import (
	"context"

	"github.com/aretw0/userkv/pkg/record"
)

// Store defines the contract for the key-value store holding user hashes and
// leaderboards. Implementations keep Redis semantics: reading a missing hash
// yields an empty mapping, and only single-field reads report ErrNotFound.
type Store interface {
	// SetFields writes fields into the hash at key, creating it if needed.
	SetFields(ctx context.Context, key string, fields []record.Field) error

	// GetAll returns every field of the hash at key.
	GetAll(ctx context.Context, key string) (Fields, error)

	// GetField returns one field of the hash at key, or ErrNotFound.
	GetField(ctx context.Context, key, field string) (string, error)

	// Scan returns the next batch of keys matching pattern and the cursor to
	// continue from. A returned cursor of 0 means the enumeration is complete.
	Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error)

	// AddScore sets the score of member in the sorted set at key.
	AddScore(ctx context.Context, key, member string, score float64) error

	// RevRangeWithScores returns members of the sorted set at key from rank
	// start to stop inclusive, highest score first.
	RevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}

// Searchable defines an interface for stores that offer secondary indexes.
type Searchable interface {
	// CreateIndex builds the index. It returns ErrIndexExists if an index with
	// the same name is already defined.
	CreateIndex(ctx context.Context, def IndexDefinition) error

	// Search runs a structured query against the index, returning at most
	// limit documents. A limit of 0 keeps the store's default page size.
	Search(ctx context.Context, index, query string, limit int) (SearchResult, error)
}
