// FILE: internal/scrape/fetch_test.go
package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eco/internal/testutil"
)

func newTestFetcher(baseURL string) *Fetcher {
	return NewFetcher(FetcherOptions{
		BaseURL:     baseURL,
		UserAgent:   "eco-test/1.0",
		Timeout:     5 * time.Second,
		MaxAttempts: 3,
		Delay:       time.Millisecond,
	})
}

func TestFetcherPage(t *testing.T) {
	var gotUA, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		// "Réti" in Latin-1: 0xE9 is é.
		w.Write([]byte{'R', 0xE9, 't', 'i'})
	}))
	defer srv.Close()

	body, attempts, err := newTestFetcher(srv.URL).Page(context.Background(), "A04")
	testutil.NoError(t, err)

	if body != "Réti" {
		t.Errorf("got body %q; want %q", body, "Réti")
	}
	if attempts != 1 {
		t.Errorf("got %d attempts; want 1", attempts)
	}
	if gotUA != "eco-test/1.0" {
		t.Errorf("got User-Agent %q; want %q", gotUA, "eco-test/1.0")
	}
	if gotPath != "/eco/A04" {
		t.Errorf("got path %q; want %q", gotPath, "/eco/A04")
	}
}

func TestFetcherRetriesErrorStatus(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, attempts, err := newTestFetcher(srv.URL).Page(context.Background(), "B12")
	testutil.NoError(t, err)

	if body != "ok" || attempts != 2 || hits != 2 {
		t.Errorf("got body=%q attempts=%d hits=%d; want ok, 2, 2", body, attempts, hits)
	}
}

func TestFetcherExhaustion(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, _, err := newTestFetcher(srv.URL).Page(context.Background(), "C00")
	testutil.Error(t, err)

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("got %T; want *FetchError", err)
	}
	if fe.Attempts != 3 || hits != 3 {
		t.Errorf("got attempts=%d hits=%d; want 3 and 3", fe.Attempts, hits)
	}
	testutil.Contains(t, fe.Error(), "failed to fetch "+srv.URL+"/eco/C00")
}
