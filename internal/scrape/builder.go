// FILE: internal/scrape/builder.go
package scrape

import (
	"context"

	"eco/internal/opening"
)

// PageReport describes the outcome of one page visit during a catalog
// build. Err is nil for a fetched page, a *FetchError after retry
// exhaustion.
type PageReport struct {
	Code     string
	URL      string
	Attempts int
	Entries  int
	Err      error
}

// Builder assembles an ECO catalog by walking the full code space. The
// optional observer is called once per page, in order; the builder
// itself never logs.
type Builder struct {
	fetcher  *Fetcher
	observer func(PageReport)
}

// NewBuilder returns a Builder over the given fetcher. observer may be
// nil.
func NewBuilder(fetcher *Fetcher, observer func(PageReport)) *Builder {
	return &Builder{fetcher: fetcher, observer: observer}
}

// Build fetches every ECO code page strictly one at a time, extracts
// its entries and normalizes their move text. Pages that cannot be
// fetched are reported and skipped; only a cancelled context aborts the
// walk. A walk that yields no entries at all fails with
// opening.ErrEmptyCatalog.
func (b *Builder) Build(ctx context.Context) (opening.Catalog, error) {
	var entries []opening.Entry

	for _, code := range Codes() {
		if err := ctx.Err(); err != nil {
			return opening.Catalog{}, err
		}

		page, attempts, err := b.fetcher.Page(ctx, code)
		if err != nil {
			if ctx.Err() != nil {
				return opening.Catalog{}, ctx.Err()
			}
			b.report(PageReport{Code: code, URL: b.fetcher.PageURL(code), Attempts: attempts, Err: err})
			continue
		}

		count := 0
		for _, raw := range ExtractEntries(page) {
			tokens := opening.Normalize(raw.Moves)
			if len(tokens) == 0 {
				continue
			}
			entries = append(entries, opening.Entry{Code: code, Name: raw.Name, Tokens: tokens})
			count++
		}
		b.report(PageReport{Code: code, URL: b.fetcher.PageURL(code), Attempts: attempts, Entries: count})
	}

	catalog := opening.NewCatalog(entries)
	if catalog.Len() == 0 {
		return opening.Catalog{}, opening.ErrEmptyCatalog
	}
	return catalog, nil
}

func (b *Builder) report(r PageReport) {
	if b.observer != nil {
		b.observer(r)
	}
}
