// Package record parses the line-delimited text format used for user and
// leaderboard input files.
//
// A user line is an identifier followed by field/value pairs:
//
//	user:1 first_name Ada last_name Lovelace country "United Kingdom"
//
// Double quotes are stripped before the line is split, so quoting does not
// group words; every whitespace-separated token is a token of its own.
package record

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned for lines that cannot be read as a score entry.
var ErrMalformed = errors.New("malformed line")

// Field is one name/value pair of a record.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Record is a parsed user line. Fields keep the order they had on the line.
type Record struct {
	ID     string  `json:"id" yaml:"id"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Map returns the fields as a mapping. A repeated name keeps its last value.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		m[f.Name] = f.Value
	}
	return m
}

// Args flattens the fields into name, value, name, value... in line order.
func (r Record) Args() []any {
	args := make([]any, 0, len(r.Fields)*2)
	for _, f := range r.Fields {
		args = append(args, f.Name, f.Value)
	}
	return args
}

// Tokens strips surrounding whitespace and every double quote from line and
// splits what is left on whitespace.
func Tokens(line string) []string {
	line = strings.ReplaceAll(strings.TrimSpace(line), `"`, "")
	return strings.Fields(line)
}

// Parse reads a user line. It reports false when the line holds fewer than
// two tokens. A trailing token without a value is dropped.
func Parse(line string) (Record, bool) {
	tokens := Tokens(line)
	if len(tokens) < 2 {
		return Record{}, false
	}

	rec := Record{ID: tokens[0]}
	for i := 1; i+1 < len(tokens); i += 2 {
		rec.Fields = append(rec.Fields, Field{Name: tokens[i], Value: tokens[i+1]})
	}
	return rec, true
}

// Score is one leaderboard entry.
type Score struct {
	Member string  `json:"member" yaml:"member"`
	Value  float64 `json:"score" yaml:"score"`
}

// ParseScore reads a "<member> <score>" line. Blank lines report false with
// no error.
func ParseScore(line string) (Score, bool, error) {
	tokens := Tokens(line)
	switch len(tokens) {
	case 0:
		return Score{}, false, nil
	case 2:
	default:
		return Score{}, false, fmt.Errorf("%w: want member and score, got %d tokens", ErrMalformed, len(tokens))
	}

	v, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return Score{}, false, fmt.Errorf("%w: score %q: %w", ErrMalformed, tokens[1], err)
	}
	return Score{Member: tokens[0], Value: v}, true, nil
}
