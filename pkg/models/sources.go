// Package models defines the data shapes shared across the ecosystem
// mapping pipeline: collected source records, the taxonomy document
// produced by analysis, and the closed success/failure result type.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RepositoryRecord is the metadata collected for a single GitHub
// repository. Records are immutable once collected; the collector fills
// every field and downstream stages only read them.
type RepositoryRecord struct {
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Stars       int      `json:"stars"`
	Forks       int      `json:"forks"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
	CreatedAt   string   `json:"created_at"` // ISO-8601
	UpdatedAt   string   `json:"updated_at"` // ISO-8601
	Homepage    string   `json:"homepage"`
	License     string   `json:"license,omitempty"`
}

// WebResult is a single web search hit.
type WebResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date,omitempty"`
}

// WebResultSet groups web results by category label ("general", "tools",
// "ecosystem", ...). Category insertion order is preserved because the
// data summary renders categories in the order the searches ran, and Go
// maps would lose that.
type WebResultSet struct {
	order   []string
	results map[string][]WebResult
}

// NewWebResultSet returns an empty result set.
func NewWebResultSet() *WebResultSet {
	return &WebResultSet{results: make(map[string][]WebResult)}
}

// Add appends results under a category, creating the category at the end
// of the iteration order if it is new.
func (s *WebResultSet) Add(category string, results ...WebResult) {
	if s.results == nil {
		s.results = make(map[string][]WebResult)
	}
	if _, ok := s.results[category]; !ok {
		s.order = append(s.order, category)
	}
	s.results[category] = append(s.results[category], results...)
}

// Categories returns the category labels in insertion order.
func (s *WebResultSet) Categories() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the results for a category in insertion order.
func (s *WebResultSet) Get(category string) []WebResult {
	if s == nil {
		return nil
	}
	return s.results[category]
}

// Len returns the total number of results across all categories.
func (s *WebResultSet) Len() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, rs := range s.results {
		n += len(rs)
	}
	return n
}

// MarshalJSON emits a JSON object with categories in insertion order, so
// the persisted raw-data bundle matches what the summary rendered.
func (s *WebResultSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cat)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(s.results[cat])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving the key order of the
// document.
func (s *WebResultSet) UnmarshalJSON(data []byte) error {
	s.order = nil
	s.results = make(map[string][]WebResult)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("web result set: expected JSON object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("web result set: expected string key")
		}
		var results []WebResult
		if err := dec.Decode(&results); err != nil {
			return fmt.Errorf("web result set: category %q: %w", key, err)
		}
		s.Add(key, results...)
	}
	return nil
}
