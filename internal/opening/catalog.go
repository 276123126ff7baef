// FILE: internal/opening/catalog.go
package opening

import (
	"errors"
	"sort"
)

var (
	// ErrNoMatch means no catalog entry's move sequence is a prefix of
	// the query.
	ErrNoMatch = errors.New("no matching ECO entry")

	// ErrEmptyCatalog means a catalog build produced zero entries.
	ErrEmptyCatalog = errors.New("empty ECO catalog")
)

// Entry is one scraped ECO line: a code, the opening's display name and
// its defining move sequence in normalized tokens.
type Entry struct {
	Code   string
	Name   string
	Tokens []string
}

// Catalog is the matching reference: entries ordered by defining-sequence
// length, longest first, so a linear scan finds the most specific match
// first. Entries with empty token sequences are never admitted; one would
// prefix-match every query. Read-only after construction.
type Catalog struct {
	entries []Entry
}

// NewCatalog filters out empty entries and sorts the rest by token count
// descending. The sort is stable: equal-length entries keep their
// encounter order.
func NewCatalog(entries []Entry) Catalog {
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if len(e.Tokens) == 0 {
			continue
		}
		kept = append(kept, e)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return len(kept[i].Tokens) > len(kept[j].Tokens)
	})
	return Catalog{entries: kept}
}

// Len returns the number of entries.
func (c Catalog) Len() int {
	return len(c.entries)
}

// Entries returns the sorted entry slice. Callers must not mutate it.
func (c Catalog) Entries() []Entry {
	return c.entries
}

// Match finds the most specific entry whose move sequence is a prefix of
// tokens. Longer sequences sort first, so the first prefix hit wins.
// An empty query cannot match anything and fails with ErrNoMatch.
func (c Catalog) Match(tokens []string) (Entry, error) {
	for _, e := range c.entries {
		if isPrefix(e.Tokens, tokens) {
			return e, nil
		}
	}
	return Entry{}, ErrNoMatch
}

func isPrefix(seq, tokens []string) bool {
	if len(seq) > len(tokens) {
		return false
	}
	for i, tok := range seq {
		if tokens[i] != tok {
			return false
		}
	}
	return true
}
