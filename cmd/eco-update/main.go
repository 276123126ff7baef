// Package main implements the batch annotator: it rebuilds the ECO
// catalog from the reference site and rewrites the dataset's ECO column.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"eco/internal/config"
	"eco/internal/dataset"
	"eco/internal/opening"
	"eco/internal/scrape"
	"eco/internal/server/core"
	"eco/internal/server/storage"

	"github.com/google/uuid"
)

func main() {
	defaults := config.Default()

	var (
		cfgPath = flag.String("config", "", "Optional YAML config file")
		csvPath = flag.String("csv", defaults.Dataset.CSVPath, "Dataset CSV to annotate in place")
		baseURL = flag.String("base-url", defaults.Source.BaseURL, "Reference site base URL")
		dbPath  = flag.String("db", "", "Optionally persist the catalog into this SQLite database")
	)
	flag.Parse()

	// Load config file, then let explicitly set flags override it
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "csv":
			cfg.Dataset.CSVPath = *csvPath
		case "base-url":
			cfg.Source.BaseURL = *baseURL
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 1. Build the catalog from the reference site. Failed pages are
	// warnings; they shrink the catalog but never abort the walk.
	fetched, failed := 0, 0
	observer := func(r scrape.PageReport) {
		if r.Err != nil {
			failed++
			log.Printf("warning: failed to fetch %s after %d attempt(s): %v", r.Code, r.Attempts, r.Err)
			return
		}
		fetched++
	}

	log.Printf("Building catalog from %s (%d pages)...", cfg.Source.BaseURL, len(scrape.Codes()))
	started := time.Now().UTC()

	builder := scrape.NewBuilder(scrape.NewFetcher(cfg.Source.FetcherOptions()), observer)
	catalog, err := builder.Build(context.Background())
	if err != nil {
		if errors.Is(err, opening.ErrEmptyCatalog) {
			log.Println("No ECO entries scraped; aborting.")
			os.Exit(1)
		}
		log.Fatalf("Failed to build catalog: %v", err)
	}
	log.Printf("Catalog built: %d entries from %d pages (%d failed)", catalog.Len(), fetched, failed)

	// 2. Annotate the dataset and rewrite it in place
	rows, err := dataset.Read(cfg.Dataset.CSVPath)
	if err != nil {
		log.Fatalf("Failed to read dataset: %v", err)
	}

	matched := dataset.Annotate(rows, catalog)
	log.Printf("Matched %d of %d dataset rows", matched, len(rows))

	if err := dataset.Write(cfg.Dataset.CSVPath, rows); err != nil {
		log.Fatalf("Failed to write dataset: %v", err)
	}

	// 3. Optionally persist the catalog as a completed refresh run
	if *dbPath != "" {
		if err := persistCatalog(*dbPath, catalog, started, fetched, failed); err != nil {
			log.Fatalf("Failed to persist catalog to %s: %v", *dbPath, err)
		}
		log.Printf("Catalog persisted to %s", *dbPath)
	}

	fmt.Printf("Updated %s with ECO codes for %d entries.\n", cfg.Dataset.CSVPath, catalog.Len())
}

// persistCatalog stores the built catalog in the server's database,
// recorded as a completed refresh run so the server reports it as the
// catalog's provenance.
func persistCatalog(path string, catalog opening.Catalog, started time.Time, fetched, failed int) error {
	store, err := storage.NewStore(path, false)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return err
	}

	runID := uuid.New().String()
	if err := store.CreateRun(storage.RunRecord{
		RunID:     runID,
		State:     core.RunRunning.String(),
		StartedAt: started,
	}); err != nil {
		return err
	}

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
	if err := store.ReplaceCatalog(records); err != nil {
		return err
	}

	return store.FinishRun(runID, core.RunCompleted.String(), fetched, failed, catalog.Len(), "")
}
