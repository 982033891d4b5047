package core

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"strconv"
	"strings"
)

// KeyDelimiter separates a key's namespace from its numeric suffix.
const KeyDelimiter = ":"

// ScanOptions configures a ScanFilter.
type ScanOptions struct {
	// Cursor is where enumeration starts. 0 starts from the beginning; any
	// other value resumes a scan that returned it.
	Cursor uint64 `json:"cursor" yaml:"cursor"`

	// Match restricts enumeration to keys matching a glob pattern.
	Match string `json:"match" yaml:"match"`

	// Count is the batch size hint passed to the store.
	Count int64 `json:"count" yaml:"count"`

	// Field is looked up for every key that is kept.
	Field string `json:"field" yaml:"field"`
}

// DefaultScanOptions returns the options used by the even-users query.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Match: KeyPrefix + "*",
		Count: 100,
		Field: "last_name",
	}
}

// Suffix returns the integer following the last KeyDelimiter in key.
func Suffix(key string) (int64, bool) {
	i := strings.LastIndex(key, KeyDelimiter)
	if i < 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(key[i+len(KeyDelimiter):], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// EvenSuffix reports whether key ends in an even number.
func EvenSuffix(key string) bool {
	n, ok := Suffix(key)
	return ok && n%2 == 0
}

// ScanFilter walks the store's keys with a cursor and keeps those accepted
// by Keep, looking up Options.Field for each.
type ScanFilter struct {
	Store   Store
	Options ScanOptions
	// Keep defaults to EvenSuffix.
	Keep   func(key string) bool
	Logger *slog.Logger
}

// Keys lazily enumerates every key the store returns, batch by batch, until
// the cursor comes back to 0. A store error is yielded once and ends the
// sequence. Iterating again starts over from Options.Cursor.
func (f ScanFilter) Keys(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		cursor := f.Options.Cursor
		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}

			keys, next, err := f.Store.Scan(ctx, cursor, f.Options.Match, f.Options.Count)
			if err != nil {
				yield("", queryErr("scan", strconv.FormatUint(cursor, 10), err))
				return
			}
			for _, key := range keys {
				if !yield(key, nil) {
					return
				}
			}
			if next == 0 {
				return
			}
			cursor = next
		}
	}
}

// Run collects the kept keys and their field values. Any error discards the
// partial result.
func (f ScanFilter) Run(ctx context.Context) (ScanResult, error) {
	keep := f.Keep
	if keep == nil {
		keep = f.evenSuffix
	}

	res := ScanResult{Keys: []string{}, Values: []string{}}
	for key, err := range f.Keys(ctx) {
		if err != nil {
			return ScanResult{}, err
		}
		if !keep(key) {
			continue
		}

		value, err := f.Store.GetField(ctx, key, f.Options.Field)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return ScanResult{}, queryErr("hget", key, err)
		}
		res.Keys = append(res.Keys, key)
		res.Values = append(res.Values, value)
	}
	return res, nil
}

func (f ScanFilter) evenSuffix(key string) bool {
	if _, ok := Suffix(key); !ok {
		if f.Logger != nil {
			f.Logger.Debug("skipping key without numeric suffix", "key", key)
		}
		return false
	}
	return EvenSuffix(key)
}
