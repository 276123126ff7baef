// FILE: internal/scrape/builder_test.go
package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eco/internal/opening"
	"eco/internal/testutil"
)

const pageA00 = `<div id="rel_ops2"><ul>
<li><a>Polish Opening</a><br>1.b4</li>
<li><a>Annotation Only</a><br>(transposes)</li>
</ul></div>`

const pageB01 = `<div id="rel_ops2"><ul>
<li><a>Scandinavian Defense</a><br>1.e4 d5</li>
<li><a>Scandinavian: Main Line</a><br>1.e4 d5 2.exd5 Qxd5 3.Nc3</li>
</ul></div>`

func builderFixture(t *testing.T) (*httptest.Server, *Fetcher) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/eco/A00":
			w.Write([]byte(pageA00))
		case "/eco/B01":
			w.Write([]byte(pageB01))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(FetcherOptions{
		BaseURL:     srv.URL,
		UserAgent:   "eco-test/1.0",
		Timeout:     5 * time.Second,
		MaxAttempts: 2,
		Delay:       0,
	})
	return srv, f
}

func TestBuilderBuild(t *testing.T) {
	_, fetcher := builderFixture(t)

	var fetched, failed int
	catalog, err := NewBuilder(fetcher, func(r PageReport) {
		if r.Err != nil {
			failed++
			var fe *FetchError
			if !errors.As(r.Err, &fe) {
				t.Errorf("report for %s carries %T; want *FetchError", r.Code, r.Err)
			}
			return
		}
		fetched++
	}).Build(context.Background())
	testutil.NoError(t, err)

	// 500 codes total, two served.
	if fetched != 2 || failed != 498 {
		t.Fatalf("got fetched=%d failed=%d; want 2 and 498", fetched, failed)
	}

	// Entries with empty normalized moves are dropped, the rest sort
	// longest sequence first.
	if catalog.Len() != 3 {
		t.Fatalf("got %d catalog entries; want 3", catalog.Len())
	}
	first := catalog.Entries()[0]
	testutil.Equal(t, first.Tokens, []string{"e4", "d5", "exd5", "Qxd5", "Nc3"})

	e, err := catalog.Match([]string{"e4", "d5", "exd5"})
	testutil.NoError(t, err)
	if e.Code != "B01" || e.Name != "Scandinavian Defense" {
		t.Errorf("got %q %q; want B01 Scandinavian Defense", e.Code, e.Name)
	}
}

func TestBuilderEmptyCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	t.Cleanup(srv.Close)

	fetcher := NewFetcher(FetcherOptions{
		BaseURL:     srv.URL,
		UserAgent:   "eco-test/1.0",
		Timeout:     time.Second,
		MaxAttempts: 1,
		Delay:       0,
	})

	_, err := NewBuilder(fetcher, nil).Build(context.Background())
	testutil.ErrorIs(t, err, opening.ErrEmptyCatalog)
}

func TestBuilderCancelledContext(t *testing.T) {
	_, fetcher := builderFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(fetcher, nil).Build(ctx)
	testutil.ErrorIs(t, err, context.Canceled)
}
