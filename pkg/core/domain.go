// Package core holds the user domain, the Store contract and the Service that
// runs the fixed user queries against a store.
package core

import (
	"fmt"
	"time"
)

// KeyPrefix namespaces user hashes in the store.
const KeyPrefix = "user:"

// UserKey returns the store key of the user with the given id.
func UserKey(usr string) string {
	return KeyPrefix + usr
}

// Fields is the flat attribute mapping stored under a user key.
type Fields map[string]string

// Coordinates is the projection returned by the coordinates query.
// Absent attributes are empty strings.
type Coordinates struct {
	Longitude string `json:"longitude" yaml:"longitude"`
	Latitude  string `json:"latitude" yaml:"latitude"`
}

// ScoredMember is one entry of a sorted set.
type ScoredMember struct {
	Member string  `json:"member" yaml:"member"`
	Score  float64 `json:"score" yaml:"score"`
}

// Standing is a leaderboard entry joined with the member's email.
type Standing struct {
	Rank   int     `json:"rank" yaml:"rank"`
	Member string  `json:"member" yaml:"member"`
	Score  float64 `json:"score" yaml:"score"`
	Email  string  `json:"email" yaml:"email"`
}

// ScanResult holds the keys kept by a scan and the field looked up for each,
// index for index.
type ScanResult struct {
	Keys   []string `json:"keys" yaml:"keys"`
	Values []string `json:"values" yaml:"values"`
}

// Document is one hit of an index search.
type Document struct {
	ID     string `json:"id" yaml:"id"`
	Fields Fields `json:"fields" yaml:"fields"`
}

// SearchResult is the outcome of an index search.
type SearchResult struct {
	Total int        `json:"total" yaml:"total"`
	Docs  []Document `json:"docs" yaml:"docs"`
}

// LoadReport summarizes a load of an input file.
type LoadReport struct {
	Source  string `json:"source" yaml:"source"`
	Lines   int    `json:"lines" yaml:"lines"`
	Stored  int    `json:"stored" yaml:"stored"`
	Skipped int    `json:"skipped" yaml:"skipped"`
}

// IndexFieldType is the kind of a secondary index field.
type IndexFieldType string

const (
	IndexText    IndexFieldType = "TEXT"
	IndexTag     IndexFieldType = "TAG"
	IndexNumeric IndexFieldType = "NUMERIC"
)

// IndexField is one indexed hash field.
type IndexField struct {
	Name string
	Type IndexFieldType
}

// IndexDefinition describes a secondary index over hashes whose keys start
// with one of Prefixes.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// UserIndex returns the index the search query runs against.
func UserIndex(name string) IndexDefinition {
	return IndexDefinition{
		Name:     name,
		Prefixes: []string{KeyPrefix},
		Fields: []IndexField{
			{Name: "gender", Type: IndexText},
			{Name: "country", Type: IndexTag},
			{Name: "latitude", Type: IndexNumeric},
		},
	}
}

// EventType represents the type of change seen on an input file.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
)

// Event represents a change to a watched input file.
type Event struct {
	Type      EventType
	Path      string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s at %s", e.Type, e.Path, time.Unix(e.Timestamp, 0).Format(time.RFC3339))
}
