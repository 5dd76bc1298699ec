package filter

import (
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Matcher finds case-insensitive substring occurrences of a fixed term set
// in a single pass over the text.
type Matcher struct {
	mu      sync.Mutex // ahocorasick.Matcher keeps per-match scratch state
	matcher *ahocorasick.Matcher
	terms   []string
}

// NewMatcher builds a Matcher over terms. Blank and duplicate terms are
// dropped; with no usable terms the Matcher never matches.
func NewMatcher(terms []string) *Matcher {
	m := &Matcher{}
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		n := normalize(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		m.terms = append(m.terms, n)
	}
	if len(m.terms) > 0 {
		m.matcher = ahocorasick.NewStringMatcher(m.terms)
	}
	return m
}

// Terms returns the normalized term set.
func (m *Matcher) Terms() []string {
	return append([]string(nil), m.terms...)
}

// Contains reports whether text contains any term.
func (m *Matcher) Contains(text string) bool {
	return len(m.Matches(text)) > 0
}

// Matches returns the terms found in text, in term order.
func (m *Matcher) Matches(text string) []string {
	if m.matcher == nil || text == "" {
		return nil
	}

	m.mu.Lock()
	hits := m.matcher.Match([]byte(strings.ToLower(text)))
	m.mu.Unlock()

	if len(hits) == 0 {
		return nil
	}
	found := make([]bool, len(m.terms))
	for _, h := range hits {
		if h >= 0 && h < len(m.terms) {
			found[h] = true
		}
	}
	out := make([]string, 0, len(hits))
	for i, ok := range found {
		if ok {
			out = append(out, m.terms[i])
		}
	}
	return out
}

func normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
