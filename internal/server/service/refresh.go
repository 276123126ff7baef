package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"eco/internal/opening"
	"eco/internal/scrape"
	"eco/internal/server/core"
	"eco/internal/server/processor"
	"eco/internal/server/storage"

	"github.com/google/uuid"
)

// StartRefresh launches a catalog rebuild on the background worker.
// A second call while a run is in flight returns ErrRefreshInProgress.
// The run row is written before this returns, so callers can poll it
// as soon as they hold the run ID.
func (s *Service) StartRefresh() (*core.RunResponse, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	if err := s.proc.TryAcquire(); err != nil {
		if errors.Is(err, processor.ErrBusy) {
			return nil, ErrRefreshInProgress
		}
		return nil, err
	}

	runID := uuid.New().String()
	started := time.Now().UTC()

	if err := s.store.CreateRun(storage.RunRecord{
		RunID:     runID,
		State:     core.RunRunning.String(),
		StartedAt: started,
	}); err != nil {
		s.proc.Release()
		return nil, fmt.Errorf("failed to create refresh run: %w", err)
	}

	if err := s.proc.Submit(processor.Task{
		RunID: runID,
		Run:   func(ctx context.Context) { s.runRefresh(ctx, runID) },
	}); err != nil {
		s.proc.Release()
		s.finishRefresh(runID, core.RunFailed, 0, 0, 0, err.Error())
		return nil, fmt.Errorf("failed to schedule refresh: %w", err)
	}

	return &core.RunResponse{RunID: runID, State: core.RunRunning.String(), StartedAt: started}, nil
}

// RefreshInProgress reports whether a refresh run is currently active
func (s *Service) RefreshInProgress() bool {
	return s.proc.Busy()
}

func (s *Service) runRefresh(ctx context.Context, runID string) {
	var fetched, failed int
	observer := func(report scrape.PageReport) {
		record := storage.FetchRecord{
			RunID:     runID,
			Code:      report.Code,
			URL:       report.URL,
			Attempts:  report.Attempts,
			Entries:   report.Entries,
			FetchedAt: time.Now().UTC(),
		}
		if report.Err != nil {
			failed++
			record.Status = "failed"
			record.Error = report.Err.Error()
		} else {
			fetched++
			record.Status = "ok"
		}
		if err := s.store.RecordFetch(record); err != nil {
			log.Printf("Refresh %s: failed to record fetch for %s: %v", runID, report.Code, err)
		}
	}

	builder := scrape.NewBuilder(scrape.NewFetcher(s.fetchOpts), observer)
	catalog, err := builder.Build(ctx)
	if err != nil {
		s.finishRefresh(runID, core.RunFailed, fetched, failed, 0, err.Error())
		return
	}

	if err := s.store.ReplaceCatalog(catalogRecords(catalog, runID)); err != nil {
		s.finishRefresh(runID, core.RunFailed, fetched, failed, 0, fmt.Sprintf("failed to persist catalog: %v", err))
		return
	}

	s.SetCatalog(catalog)
	s.finishRefresh(runID, core.RunCompleted, fetched, failed, catalog.Len(), "")
	log.Printf("Refresh %s completed: %d entries from %d pages (%d failed)", runID, catalog.Len(), fetched, failed)
}

func (s *Service) finishRefresh(runID string, state core.RunState, fetched, failed, entries int, errMsg string) {
	if err := s.store.FinishRun(runID, state.String(), fetched, failed, entries, errMsg); err != nil {
		log.Printf("Refresh %s: failed to finish run: %v", runID, err)
	}
}

// catalogRecords flattens a catalog into storage rows in match order
func catalogRecords(catalog opening.Catalog, runID string) []storage.OpeningRecord {
	entries := catalog.Entries()
	records := make([]storage.OpeningRecord, 0, len(entries))
	for i, entry := range entries {
		records = append(records, storage.OpeningRecord{
			Code:       entry.Code,
			Name:       entry.Name,
			Moves:      strings.Join(entry.Tokens, " "),
			TokenCount: len(entry.Tokens),
			Position:   i,
			RunID:      runID,
		})
	}
	return records
}
