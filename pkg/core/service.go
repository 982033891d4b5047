package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/userkv/pkg/record"
)

// Settings holds the names and defaults the queries run with.
type Settings struct {
	Leaderboard string      `json:"leaderboard" yaml:"leaderboard"`
	IndexName   string      `json:"index" yaml:"index"`
	Scan        ScanOptions `json:"scan" yaml:"scan"`
	TopLimit    int         `json:"top_limit" yaml:"top_limit"`
}

// DefaultSettings returns the settings matching the stock dataset.
func DefaultSettings() Settings {
	return Settings{
		Leaderboard: "leaderboard",
		IndexName:   "user_index",
		Scan:        DefaultScanOptions(),
		TopLimit:    10,
	}
}

// Service handles loading and querying user data.
type Service struct {
	mu       sync.RWMutex
	store    Store
	logger   *slog.Logger
	settings Settings
}

// NewService creates a new Service. A nil logger discards output.
func NewService(store Store, settings Settings, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, settings: settings, logger: logger}
}

// Settings returns the settings the service was created with.
func (s *Service) Settings() Settings {
	return s.settings
}

// WithSettings returns a service over the same store with other settings.
// Closing either closes the shared store.
func (s *Service) WithSettings(settings Settings) *Service {
	return NewService(s.store, settings, s.logger)
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close releases the store.
func (s *Service) Close() error {
	return s.store.Close()
}

// LoadUsers stores every record of the file at path as a user hash.
func (s *Service) LoadUsers(ctx context.Context, path string) (LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadReport{Source: path}, fmt.Errorf("open users file: %w", err)
	}
	defer f.Close()

	report, err := s.LoadUsersFrom(ctx, f)
	report.Source = path
	return report, err
}

// LoadUsersFrom stores every record read from r. Lines that do not hold a
// record with at least one field are skipped. The first store error aborts
// the load; records written before it stay written.
func (s *Service) LoadUsersFrom(ctx context.Context, r io.Reader) (LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report LoadReport
	for line, err := range record.Lines(r) {
		if err != nil {
			return report, err
		}
		report.Lines++

		rec, ok := record.Parse(line.Text)
		if !ok || len(rec.Fields) == 0 {
			report.Skipped++
			if strings.TrimSpace(line.Text) != "" {
				s.logger.Debug("skipping line without fields", "line", line.Number)
			}
			continue
		}

		if err := s.store.SetFields(ctx, rec.ID, rec.Fields); err != nil {
			return report, queryErr("hset", rec.ID, err)
		}
		report.Stored++
	}

	s.logger.Info("users loaded", "stored", report.Stored, "skipped", report.Skipped)
	return report, nil
}

// LoadScores adds every "<member> <score>" line of the file at path to the
// leaderboard. Malformed lines are logged and skipped.
func (s *Service) LoadScores(ctx context.Context, path string) (LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadReport{Source: path}, fmt.Errorf("open scores file: %w", err)
	}
	defer f.Close()

	report, err := s.LoadScoresFrom(ctx, f)
	report.Source = path
	return report, err
}

// LoadScoresFrom is LoadScores over an io.Reader.
func (s *Service) LoadScoresFrom(ctx context.Context, r io.Reader) (LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report LoadReport
	for line, err := range record.Lines(r) {
		if err != nil {
			return report, err
		}
		report.Lines++

		score, ok, err := record.ParseScore(line.Text)
		if err != nil {
			s.logger.Warn("skipping malformed score", "error", &record.ParseError{Line: line.Number, Err: err})
		}
		if !ok {
			report.Skipped++
			continue
		}

		if err := s.store.AddScore(ctx, s.settings.Leaderboard, score.Member, score.Value); err != nil {
			return report, queryErr("zadd", s.settings.Leaderboard, err)
		}
		report.Stored++
	}

	s.logger.Info("scores loaded", "leaderboard", s.settings.Leaderboard, "stored", report.Stored, "skipped", report.Skipped)
	return report, nil
}

// User returns all attributes of user usr.
func (s *Service) User(ctx context.Context, usr string) (Fields, error) {
	if usr == "" {
		return nil, fmt.Errorf("%w: user id cannot be empty", ErrInvalidKey)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key := UserKey(usr)
	fields, err := s.store.GetAll(ctx, key)
	if err != nil {
		return nil, queryErr("hgetall", key, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("user %s: %w", usr, ErrNotFound)
	}
	return fields, nil
}

// Coordinates returns the longitude and latitude of user usr.
func (s *Service) Coordinates(ctx context.Context, usr string) (Coordinates, error) {
	if usr == "" {
		return Coordinates{}, fmt.Errorf("%w: user id cannot be empty", ErrInvalidKey)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key := UserKey(usr)
	lon, err := s.field(ctx, key, "longitude")
	if err != nil {
		return Coordinates{}, err
	}
	lat, err := s.field(ctx, key, "latitude")
	if err != nil {
		return Coordinates{}, err
	}
	return Coordinates{Longitude: lon, Latitude: lat}, nil
}

// EvenUsers returns the keys of users whose id is even, with the configured
// field of each. Zero values in opts fall back to the service settings.
func (s *Service) EvenUsers(ctx context.Context, opts ScanOptions) (ScanResult, error) {
	base := s.settings.Scan
	if opts.Match == "" {
		opts.Match = base.Match
	}
	if opts.Count <= 0 {
		opts.Count = base.Count
	}
	if opts.Field == "" {
		opts.Field = base.Field
	}
	if opts.Cursor == 0 {
		opts.Cursor = base.Cursor
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filter := ScanFilter{Store: s.store, Options: opts, Logger: s.logger}
	return filter.Run(ctx)
}

// UserQuery selects users by gender, country and a latitude range.
type UserQuery struct {
	Gender    string   `json:"gender" yaml:"gender"`
	Countries []string `json:"countries" yaml:"countries"`

	// ByLatitude enables the [MinLat, MaxLat] clause. Zero bounds are a
	// valid range.
	ByLatitude bool    `json:"by_latitude" yaml:"by_latitude"`
	MinLat     float64 `json:"min_lat" yaml:"min_lat"`
	MaxLat     float64 `json:"max_lat" yaml:"max_lat"`

	Limit int `json:"limit" yaml:"limit"`
}

// DefaultUserQuery selects females in China or Russia between latitudes 40
// and 46.
func DefaultUserQuery() UserQuery {
	return UserQuery{
		Gender:     "female",
		Countries:  []string{"China", "Russia"},
		ByLatitude: true,
		MinLat:     40,
		MaxLat:     46,
	}
}

// String renders the query in the store's search syntax.
func (q UserQuery) String() string {
	var parts []string
	if q.Gender != "" {
		parts = append(parts, "@gender:"+q.Gender)
	}
	if len(q.Countries) > 0 {
		parts = append(parts, "@country:{"+strings.Join(q.Countries, "|")+"}")
	}
	if q.ByLatitude {
		parts = append(parts, fmt.Sprintf("@latitude:[%g %g]", q.MinLat, q.MaxLat))
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// EnsureIndex creates the user index unless it already exists.
func (s *Service) EnsureIndex(ctx context.Context) error {
	searcher, ok := s.store.(Searchable)
	if !ok {
		return fmt.Errorf("create index: %w", ErrUnsupported)
	}

	def := UserIndex(s.settings.IndexName)
	err := searcher.CreateIndex(ctx, def)
	if errors.Is(err, ErrIndexExists) {
		s.logger.Debug("reusing index", "index", def.Name)
		return nil
	}
	return queryErr("ft.create", def.Name, err)
}

// SearchUsers makes sure the user index exists and runs q against it.
func (s *Service) SearchUsers(ctx context.Context, q UserQuery) (SearchResult, error) {
	searcher, ok := s.store.(Searchable)
	if !ok {
		return SearchResult{}, fmt.Errorf("search: %w", ErrUnsupported)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.EnsureIndex(ctx); err != nil {
		return SearchResult{}, err
	}

	query := q.String()
	s.logger.Debug("searching", "index", s.settings.IndexName, "query", query)
	res, err := searcher.Search(ctx, s.settings.IndexName, query, q.Limit)
	if err != nil {
		return SearchResult{}, queryErr("ft.search", s.settings.IndexName, err)
	}
	return res, nil
}

// TopPlayers returns the n best players of the leaderboard with their emails.
// n <= 0 uses the configured limit, or 10 when that is unset.
func (s *Service) TopPlayers(ctx context.Context, n int) ([]Standing, error) {
	if n <= 0 {
		n = s.settings.TopLimit
	}
	if n <= 0 {
		n = DefaultSettings().TopLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	board := s.settings.Leaderboard
	members, err := s.store.RevRangeWithScores(ctx, board, 0, int64(n-1))
	if err != nil {
		return nil, queryErr("zrevrange", board, err)
	}

	standings := make([]Standing, 0, len(members))
	for i, m := range members {
		email, err := s.field(ctx, UserKey(m.Member), "email")
		if err != nil {
			return nil, err
		}
		standings = append(standings, Standing{
			Rank:   i + 1,
			Member: m.Member,
			Score:  m.Score,
			Email:  email,
		})
	}
	return standings, nil
}

// field reads one hash field, mapping a missing field to "".
func (s *Service) field(ctx context.Context, key, name string) (string, error) {
	v, err := s.store.GetField(ctx, key, name)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", queryErr("hget", key, err)
	}
	return v, nil
}
