package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// SinceLayout is the date format used for the search lower bound.
const SinceLayout = "2006-01-02"

// Query is one keyword search with an optional inclusive date lower bound.
type Query struct {
	Keyword string
	Since   *time.Time
}

// NewQuery validates and builds a Query.
func NewQuery(keyword string, since *time.Time) (Query, error) {
	kw := strings.TrimSpace(keyword)
	if kw == "" {
		return Query{}, eris.New("query: empty keyword")
	}
	return Query{Keyword: kw, Since: since}, nil
}

// SearchTerm renders the provider search string, e.g.
// `"defi protocol" since:2025-07-01`.
func (q Query) SearchTerm() string {
	if q.Since == nil {
		return fmt.Sprintf("%q", q.Keyword)
	}
	return fmt.Sprintf("%q since:%s", q.Keyword, q.Since.Format(SinceLayout))
}

// BuildQueries builds one Query per keyword, all sharing the same lower bound.
func BuildQueries(keywords []string, since *time.Time) ([]Query, error) {
	if len(keywords) == 0 {
		return nil, eris.New("query: no keywords configured")
	}
	out := make([]Query, 0, len(keywords))
	for i, kw := range keywords {
		q, err := NewQuery(kw, since)
		if err != nil {
			return nil, eris.Wrapf(err, "keyword %d", i)
		}
		out = append(out, q)
	}
	return out, nil
}

// SearchTerms renders every query's search string in order.
func SearchTerms(queries []Query) []string {
	terms := make([]string, len(queries))
	for i, q := range queries {
		terms[i] = q.SearchTerm()
	}
	return terms
}

// ParseSince parses a YYYY-MM-DD lower bound. An empty string yields nil.
func ParseSince(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(SinceLayout, s)
	if err != nil {
		return nil, eris.Wrapf(err, "query: invalid since date %q", s)
	}
	return &t, nil
}
