package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"eco/internal/opening"
	"eco/internal/scrape"
	"eco/internal/server/core"
	"eco/internal/server/processor"
	"eco/internal/server/storage"
)

const (
	CleanupJobInterval = 1 * time.Hour
	RunRetention       = 7 * 24 * time.Hour
	TokenTTL           = 24 * time.Hour
)

var (
	ErrStorageDisabled   = errors.New("storage disabled")
	ErrRunNotFound       = errors.New("run not found")
	ErrRefreshInProgress = errors.New("refresh already in progress")
)

// Service coordinates the opening catalog, refresh runs, and storage
type Service struct {
	catalog   opening.Catalog
	mu        sync.RWMutex
	store     *storage.Store
	jwtSecret []byte
	fetchOpts scrape.FetcherOptions
	proc      *processor.Processor // Single worker, at most one refresh run at a time
}

// New creates a new service instance with optional storage
func New(store *storage.Store, jwtSecret []byte, fetchOpts scrape.FetcherOptions) *Service {
	return &Service{
		store:     store,
		jwtSecret: jwtSecret,
		fetchOpts: fetchOpts,
		proc:      processor.New(),
	}
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// SetCatalog swaps the in-memory catalog
func (s *Service) SetCatalog(c opening.Catalog) {
	s.mu.Lock()
	s.catalog = c
	s.mu.Unlock()
}

// CatalogSize returns the number of entries in the in-memory catalog
func (s *Service) CatalogSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Len()
}

// LoadCatalogFromStore replaces the in-memory catalog with the persisted one.
// A zero return with nil error means the store holds no catalog yet.
func (s *Service) LoadCatalogFromStore() (int, error) {
	if s.store == nil {
		return 0, ErrStorageDisabled
	}

	records, err := s.store.LoadCatalog()
	if err != nil {
		return 0, fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	entries := make([]opening.Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, opening.Entry{
			Code:   rec.Code,
			Name:   rec.Name,
			Tokens: strings.Fields(rec.Moves),
		})
	}

	s.SetCatalog(opening.NewCatalog(entries))
	return len(entries), nil
}

// LoadCatalogFromBook builds the catalog from an annotated dataset CSV,
// keeping only rows that carry an ECO code and at least one move.
func (s *Service) LoadCatalogFromBook(path string) (int, error) {
	book, err := opening.LoadBook(path)
	if err != nil {
		return 0, err
	}

	entries := make([]opening.Entry, 0, book.Len())
	for o := range book.All() {
		if o.ECO == "" || len(o.Moves) == 0 {
			continue
		}
		entries = append(entries, opening.Entry{Code: o.ECO, Name: o.Name, Tokens: o.Moves})
	}

	s.SetCatalog(opening.NewCatalog(entries))
	return len(entries), nil
}

// Classify normalizes raw move text and matches it against the catalog
func (s *Service) Classify(moves string) (core.ClassifyResponse, error) {
	tokens := opening.Normalize(moves)

	s.mu.RLock()
	entry, err := s.catalog.Match(tokens)
	s.mu.RUnlock()

	if err != nil {
		return core.ClassifyResponse{}, err
	}

	return core.ClassifyResponse{
		ECO:           entry.Code,
		Name:          entry.Name,
		MatchedTokens: len(entry.Tokens),
		Tokens:        tokens,
	}, nil
}

// OpeningsByCode returns every catalog entry carrying the given ECO code
func (s *Service) OpeningsByCode(code string) []core.OpeningResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.OpeningResponse
	for _, entry := range s.catalog.Entries() {
		if entry.Code == code {
			out = append(out, core.OpeningResponse{ECO: entry.Code, Name: entry.Name, Moves: entry.Tokens})
		}
	}
	return out
}

// SearchOpenings filters the catalog by exact code and/or case-insensitive
// name substring, capped at limit entries when limit is positive
func (s *Service) SearchOpenings(code, name string, limit int) []core.OpeningResponse {
	name = strings.ToLower(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.OpeningResponse
	for _, entry := range s.catalog.Entries() {
		if code != "" && entry.Code != code {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(entry.Name), name) {
			continue
		}
		out = append(out, core.OpeningResponse{ECO: entry.Code, Name: entry.Name, Moves: entry.Tokens})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// CatalogStats reports catalog size, code coverage, and the last completed refresh
func (s *Service) CatalogStats() core.CatalogResponse {
	s.mu.RLock()
	codes := make(map[string]struct{})
	for _, entry := range s.catalog.Entries() {
		codes[entry.Code] = struct{}{}
	}
	resp := core.CatalogResponse{
		Entries: s.catalog.Len(),
		Codes:   len(codes),
		Source:  s.fetchOpts.BaseURL,
	}
	s.mu.RUnlock()

	if s.store != nil {
		if rec, err := s.store.LatestCompletedRun(); err == nil && rec != nil {
			run := runResponse(rec)
			resp.LastRefresh = &run
		}
	}
	return resp
}

// GetRun returns the status of a refresh run
func (s *Service) GetRun(runID string) (*core.RunResponse, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	rec, err := s.store.GetRun(runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	run := runResponse(rec)
	return &run, nil
}

// GetFetchLog returns the per-page fetch log of a refresh run
func (s *Service) GetFetchLog(runID string, limit int) (*core.FetchLogResponse, error) {
	if _, err := s.GetRun(runID); err != nil {
		return nil, err
	}

	records, err := s.store.GetFetchLog(runID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load fetch log: %w", err)
	}

	resp := &core.FetchLogResponse{
		RunID: runID,
		Count: len(records),
		Pages: make([]core.FetchLogEntry, 0, len(records)),
	}
	for _, rec := range records {
		resp.Pages = append(resp.Pages, core.FetchLogEntry{
			Code:      rec.Code,
			URL:       rec.URL,
			Status:    rec.Status,
			Attempts:  rec.Attempts,
			Entries:   rec.Entries,
			Error:     rec.Error,
			FetchedAt: rec.FetchedAt,
		})
	}
	return resp, nil
}

func runResponse(rec *storage.RunRecord) core.RunResponse {
	return core.RunResponse{
		RunID:        rec.RunID,
		State:        rec.State,
		StartedAt:    rec.StartedAt,
		FinishedAt:   rec.FinishedAt,
		PagesFetched: rec.PagesFetched,
		PagesFailed:  rec.PagesFailed,
		EntryCount:   rec.EntryCount,
		Error:        rec.Error,
	}
}

// Shutdown gracefully shuts down the service
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	// Aborts any in-flight refresh and waits for the worker to settle
	if err := s.proc.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("refresh worker: %w", err))
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RunCleanupJob runs periodic pruning of finished refresh runs
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupExpired()
		}
	}
}

func (s *Service) cleanupExpired() {
	if s.store == nil {
		return
	}

	// Log but don't fail
	cutoff := time.Now().UTC().Add(-RunRetention)
	if deleted, err := s.store.DeleteFinishedRunsBefore(cutoff); err != nil {
		log.Printf("cleanup: failed to delete finished runs: %v", err)
	} else if deleted > 0 {
		log.Printf("cleanup: deleted %d finished refresh runs", deleted)
	}
}
