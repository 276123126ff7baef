// FILE: internal/dataset/dataset.go
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"

	"eco/internal/opening"
)

// Header is the dataset's fixed column set, in file order.
var Header = []string{"Moves", "ECO", "Name", "ResultFEN", "SequenceFENs"}

// Row is one dataset record. Annotation rewrites ECO; every other field
// passes through untouched.
type Row struct {
	Moves        string
	ECO          string
	Name         string
	ResultFEN    string
	SequenceFENs string
}

// Read loads the whole dataset into memory. The header row must match
// Header exactly, and every record must have five fields.
func Read(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, Row{
			Moves:        rec[0],
			ECO:          rec[1],
			Name:         rec[2],
			ResultFEN:    rec[3],
			SequenceFENs: rec[4],
		})
	}
	return rows, nil
}

func checkHeader(got []string) error {
	if len(got) != len(Header) {
		return errors.New("unexpected header")
	}
	for i, want := range Header {
		if got[i] != want {
			return fmt.Errorf("unexpected header column %d: got %q, want %q", i, got[i], want)
		}
	}
	return nil
}

// Annotate recomputes the ECO column of every row against the catalog.
// Rows that match no entry get an empty code and a warning; they never
// abort the pass. Returns the number of rows that matched.
func Annotate(rows []Row, catalog opening.Catalog) int {
	matched := 0
	for i := range rows {
		entry, err := catalog.Match(opening.Normalize(rows[i].Moves))
		if err != nil {
			rows[i].ECO = ""
			log.Printf("warning: could not match moves '%s'", rows[i].Moves)
			continue
		}
		rows[i].ECO = entry.Code
		matched++
	}
	return matched
}

// Write rewrites the dataset in full: header first, then every row in
// order, LF line endings.
func Write(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return err
	}
	for _, row := range rows {
		rec := []string{row.Moves, row.ECO, row.Name, row.ResultFEN, row.SequenceFENs}
		if err := w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
