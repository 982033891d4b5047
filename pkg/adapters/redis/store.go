// Package redis implements core.Store on top of a Redis server, including
// the search module's secondary indexes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aretw0/userkv/pkg/core"
	"github.com/aretw0/userkv/pkg/record"
)

// Config holds the connection settings.
type Config struct {
	Addr        string
	Username    string
	Password    string
	DB          int
	DialTimeout time.Duration
	Logger      *slog.Logger
}

// Store implements core.Store and core.Searchable with go-redis.
type Store struct {
	client *goredis.Client
	config Config
}

// NewStore creates a store for the server at config.Addr. No connection is
// made until the first command; use Ping to check reachability.
func NewStore(config Config) *Store {
	opts := &goredis.Options{
		Addr:     config.Addr,
		Username: config.Username,
		Password: config.Password,
		DB:       config.DB,
		// Search replies are decoded from RESP2.
		Protocol: 2,
	}
	if config.DialTimeout > 0 {
		opts.DialTimeout = config.DialTimeout
	}
	return &Store{client: goredis.NewClient(opts), config: config}
}

// Ping checks that the server answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return &core.ConnectionError{Addr: s.config.Addr, Err: err}
	}
	if s.config.Logger != nil {
		s.config.Logger.Debug("connected", "addr", s.config.Addr, "db", s.config.DB)
	}
	return nil
}

// SetFields runs HSET key name value [name value ...].
func (s *Store) SetFields(ctx context.Context, key string, fields []record.Field) error {
	if len(fields) == 0 {
		return fmt.Errorf("hset %s: %w: no fields", key, core.ErrInvalidKey)
	}
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Name, f.Value)
	}
	return s.client.HSet(ctx, key, args...).Err()
}

// GetAll runs HGETALL key.
func (s *Store) GetAll(ctx context.Context, key string) (core.Fields, error) {
	m, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	return core.Fields(m), nil
}

// GetField runs HGET key field.
func (s *Store) GetField(ctx context.Context, key, field string) (string, error) {
	v, err := s.client.HGet(ctx, key, field).Result()
	if errors.Is(err, goredis.Nil) {
		return "", core.ErrNotFound
	}
	return v, err
}

// Scan runs SCAN cursor [MATCH match] COUNT count.
func (s *Store) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	keys, next, err := s.client.Scan(ctx, cursor, match, count).Result()
	if err != nil {
		return nil, 0, err
	}
	return keys, next, nil
}

// AddScore runs ZADD key score member.
func (s *Store) AddScore(ctx context.Context, key, member string, score float64) error {
	return s.client.ZAdd(ctx, key, goredis.Z{Score: score, Member: member}).Err()
}

// RevRangeWithScores runs ZREVRANGE key start stop WITHSCORES.
func (s *Store) RevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]core.ScoredMember, error) {
	zs, err := s.client.ZRevRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([]core.ScoredMember, 0, len(zs))
	for _, z := range zs {
		out = append(out, core.ScoredMember{Member: fmt.Sprint(z.Member), Score: z.Score})
	}
	return out, nil
}

// CreateIndex runs FT.CREATE name ON HASH PREFIX n prefixes... SCHEMA ...
func (s *Store) CreateIndex(ctx context.Context, def core.IndexDefinition) error {
	prefixes := make([]any, 0, len(def.Prefixes))
	for _, p := range def.Prefixes {
		prefixes = append(prefixes, p)
	}

	schema := make([]*goredis.FieldSchema, 0, len(def.Fields))
	for _, f := range def.Fields {
		ft, err := fieldType(f.Type)
		if err != nil {
			return err
		}
		schema = append(schema, &goredis.FieldSchema{FieldName: f.Name, FieldType: ft})
	}

	err := s.client.FTCreate(ctx, def.Name, &goredis.FTCreateOptions{
		OnHash: true,
		Prefix: prefixes,
	}, schema...).Err()
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "index already exists") {
		return core.ErrIndexExists
	}
	return err
}

// Search runs FT.SEARCH index query [LIMIT 0 limit].
func (s *Store) Search(ctx context.Context, index, query string, limit int) (core.SearchResult, error) {
	opts := &goredis.FTSearchOptions{}
	if limit > 0 {
		opts.Limit = limit
	}
	res, err := s.client.FTSearchWithArgs(ctx, index, query, opts).Result()
	if err != nil {
		return core.SearchResult{}, err
	}

	out := core.SearchResult{Total: res.Total, Docs: make([]core.Document, 0, len(res.Docs))}
	for _, d := range res.Docs {
		out.Docs = append(out.Docs, core.Document{ID: d.ID, Fields: core.Fields(d.Fields)})
	}
	return out, nil
}

// Close closes the client and its connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

func fieldType(t core.IndexFieldType) (goredis.SearchFieldType, error) {
	switch t {
	case core.IndexText:
		return goredis.SearchFieldTypeText, nil
	case core.IndexTag:
		return goredis.SearchFieldTypeTag, nil
	case core.IndexNumeric:
		return goredis.SearchFieldTypeNumeric, nil
	default:
		return goredis.SearchFieldTypeInvalid, fmt.Errorf("unknown index field type %q", t)
	}
}

var (
	_ core.Store      = (*Store)(nil)
	_ core.Searchable = (*Store)(nil)
)
