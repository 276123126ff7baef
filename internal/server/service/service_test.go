package service

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"eco/internal/opening"
	"eco/internal/scrape"
	"eco/internal/server/core"
	"eco/internal/server/storage"
	"eco/internal/testutil"
)

var testSecret = []byte("test-secret-minimum-32-characters!!")

func testEntries() []opening.Entry {
	return []opening.Entry{
		{Code: "C60", Name: "Ruy Lopez", Tokens: []string{"e4", "e5", "Nf3", "Nc6", "Bb5"}},
		{Code: "C50", Name: "Italian Game", Tokens: []string{"e4", "e5", "Nf3", "Nc6", "Bc4"}},
		{Code: "B00", Name: "King's Pawn", Tokens: []string{"e4"}},
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := New(nil, testSecret, scrape.FetcherOptions{BaseURL: "http://src"})
	svc.SetCatalog(opening.NewCatalog(testEntries()))
	return svc
}

func newStoredService(t *testing.T, opts scrape.FetcherOptions) *Service {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "eco_test.db"), false)
	testutil.NoError(t, err)
	testutil.NoError(t, store.InitDB())
	svc := New(store, testSecret, opts)
	t.Cleanup(func() { svc.Shutdown(2 * time.Second) })
	return svc
}

func TestClassify(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Classify("1.e4 e5 2.Nf3 Nc6 3.Bb5!")
	testutil.NoError(t, err)
	if resp.ECO != "C60" || resp.Name != "Ruy Lopez" || resp.MatchedTokens != 5 {
		t.Errorf("got %+v; want C60 Ruy Lopez with 5 matched tokens", resp)
	}
	testutil.Equal(t, resp.Tokens, []string{"e4", "e5", "Nf3", "Nc6", "Bb5"})

	_, err = svc.Classify("1.d4 d5")
	testutil.ErrorIs(t, err, opening.ErrNoMatch)
}

func TestOpeningLookups(t *testing.T) {
	svc := newTestService(t)

	t.Run("by code", func(t *testing.T) {
		got := svc.OpeningsByCode("C50")
		if len(got) != 1 || got[0].Name != "Italian Game" {
			t.Errorf("got %+v; want Italian Game", got)
		}
		if got := svc.OpeningsByCode("E99"); len(got) != 0 {
			t.Errorf("got %+v; want nothing for E99", got)
		}
	})

	t.Run("search by name", func(t *testing.T) {
		got := svc.SearchOpenings("", "PAWN", 0)
		if len(got) != 1 || got[0].ECO != "B00" {
			t.Errorf("got %+v; want B00", got)
		}
	})

	t.Run("search limit", func(t *testing.T) {
		got := svc.SearchOpenings("", "", 2)
		if len(got) != 2 {
			t.Errorf("got %d results; want 2", len(got))
		}
	})
}

func TestCatalogStats(t *testing.T) {
	svc := newTestService(t)

	stats := svc.CatalogStats()
	if stats.Entries != 3 || stats.Codes != 3 || stats.Source != "http://src" {
		t.Errorf("got %+v; want 3 entries, 3 codes, source http://src", stats)
	}
	if stats.LastRefresh != nil {
		t.Errorf("got %+v; want no refresh without storage", stats.LastRefresh)
	}
}

func TestLoadCatalogFromBook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openings.csv")
	csv := "Moves,ECO,Name,ResultFEN,SequenceFENs\n" +
		"1. e4 e5,C50,Italian Game,fen-1,fen-a\n" +
		"1. h4,,Kadas Opening,fen-2,fen-b\n"
	testutil.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	svc := New(nil, nil, scrape.FetcherOptions{})
	n, err := svc.LoadCatalogFromBook(path)
	testutil.NoError(t, err)
	if n != 1 {
		t.Fatalf("got %d entries; want 1 (unannotated row dropped)", n)
	}

	resp, err := svc.Classify("1.e4 e5 2.Nf3")
	testutil.NoError(t, err)
	if resp.ECO != "C50" {
		t.Errorf("got %q; want C50", resp.ECO)
	}
}

func TestRefreshRequiresStorage(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.StartRefresh()
	testutil.ErrorIs(t, err, ErrStorageDisabled)

	_, err = svc.GetRun("any")
	testutil.ErrorIs(t, err, ErrStorageDisabled)
}

func TestGetRunNotFound(t *testing.T) {
	svc := newStoredService(t, scrape.FetcherOptions{BaseURL: "http://src"})

	_, err := svc.GetRun("11111111-1111-1111-1111-111111111111")
	testutil.ErrorIs(t, err, ErrRunNotFound)
}

const refreshPage = `<html><body>
<div id="rel_ops2">
<ul>
<li><a href="/eco/B01">Scandinavian Defense</a><br>1.e4 d5</li>
</ul>
</div>
</body></html>`

func TestRefreshLifecycle(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/eco/A00":
			// Holds the run open so the in-progress conflict is observable
			<-release
			http.NotFound(w, r)
		case "/eco/B01":
			w.Write([]byte(refreshPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	svc := newStoredService(t, scrape.FetcherOptions{
		BaseURL:     srv.URL,
		UserAgent:   "eco-test/1.0",
		Timeout:     5 * time.Second,
		MaxAttempts: 1,
	})

	started, err := svc.StartRefresh()
	testutil.NoError(t, err)
	if started.State != "running" {
		t.Fatalf("got state %q; want running", started.State)
	}

	_, err = svc.StartRefresh()
	testutil.ErrorIs(t, err, ErrRefreshInProgress)
	testutil.True(t, svc.RefreshInProgress(), "RefreshInProgress while run is parked")

	close(release)

	var run *core.RunResponse
	deadline := time.Now().Add(15 * time.Second)
	for {
		run, err = svc.GetRun(started.RunID)
		testutil.NoError(t, err)
		if run.State != "running" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("refresh never finished")
		}
		time.Sleep(20 * time.Millisecond)
	}

	if run.State != "completed" || run.FinishedAt == nil {
		t.Fatalf("got %+v; want completed with finish time", run)
	}
	if run.PagesFetched != 1 || run.PagesFailed != 499 || run.EntryCount != 1 {
		t.Errorf("got fetched=%d failed=%d entries=%d; want 1, 499, 1",
			run.PagesFetched, run.PagesFailed, run.EntryCount)
	}

	// The completed run swaps the in-memory catalog
	if svc.CatalogSize() != 1 {
		t.Errorf("got catalog size %d; want 1", svc.CatalogSize())
	}
	resp, err := svc.Classify("1.e4 d5 2.exd5")
	testutil.NoError(t, err)
	if resp.ECO != "B01" {
		t.Errorf("got %q; want B01", resp.ECO)
	}

	stats := svc.CatalogStats()
	if stats.LastRefresh == nil || stats.LastRefresh.RunID != started.RunID {
		t.Errorf("got %+v; want last refresh %s", stats.LastRefresh, started.RunID)
	}

	// Fetch log rows are written asynchronously
	deadline = time.Now().Add(5 * time.Second)
	var fetchLog *core.FetchLogResponse
	for {
		fetchLog, err = svc.GetFetchLog(started.RunID, 0)
		testutil.NoError(t, err)
		if fetchLog.Count >= 500 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("fetch log never reached 500 pages (have %d)", fetchLog.Count)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if fetchLog.Pages[0].Code != "A00" || fetchLog.Pages[0].Status != "failed" {
		t.Errorf("got first page %+v; want failed A00", fetchLog.Pages[0])
	}
	var ok bool
	for _, page := range fetchLog.Pages {
		if page.Code == "B01" {
			ok = page.Status == "ok" && page.Entries == 1
		}
	}
	testutil.True(t, ok, "B01 page logged as ok with one entry")
}

func TestAdminAuth(t *testing.T) {
	svc := newStoredService(t, scrape.FetcherOptions{BaseURL: "http://src"})

	admin, err := svc.CreateAdmin("Keeper", "correct horse battery")
	testutil.NoError(t, err)
	if admin.AdminID == "" {
		t.Fatal("admin ID not assigned")
	}

	_, err = svc.AuthenticateAdmin("keeper", "wrong secret")
	testutil.Error(t, err)
	testutil.Contains(t, err.Error(), "invalid credentials")

	_, err = svc.AuthenticateAdmin("nobody", "whatever")
	testutil.Error(t, err)
	testutil.Contains(t, err.Error(), "invalid credentials")

	got, err := svc.AuthenticateAdmin("Keeper", "correct horse battery")
	testutil.NoError(t, err)
	if got.AdminID != admin.AdminID {
		t.Errorf("got %q; want %q", got.AdminID, admin.AdminID)
	}

	token, expiresAt, err := svc.GenerateAdminToken(got)
	testutil.NoError(t, err)
	testutil.True(t, expiresAt.After(time.Now()), "token expiry in the future")

	subject, claims, err := svc.ValidateToken(token)
	testutil.NoError(t, err)
	if subject != admin.AdminID {
		t.Errorf("got subject %q; want %q", subject, admin.AdminID)
	}
	if claims["name"] != "Keeper" {
		t.Errorf("got claims %+v; want name Keeper", claims)
	}

	testutil.NoError(t, svc.UpdateLastLogin(admin.AdminID))
}
