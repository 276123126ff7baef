// FILE: internal/opening/book.go
package opening

import (
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"
	"strings"
)

// Opening is one annotated dataset row in lookup-friendly form.
type Opening struct {
	// ECO classification code, e.g. "C60". May be empty for rows the
	// annotator could not match.
	ECO string
	// Moves holds the individual moves with turn numbers stripped.
	Moves []string
	// Name is the common opening name, e.g. "Ruy Lopez".
	Name string
	// ResultFEN is the position after the full sequence.
	ResultFEN string
	// SequenceFENs holds one FEN per position along the sequence.
	SequenceFENs []string
	// SequenceMoves is the raw move field as stored in the dataset.
	SequenceMoves string
}

// Book is a read-only collection of openings loaded from the annotated
// dataset. Lookups are linear scans; the dataset is small enough that
// indexing would be noise.
type Book struct {
	ops []Opening
}

// LoadBook reads the annotated dataset CSV at path into a Book.
func LoadBook(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := ReadBook(f)
	if err != nil {
		return nil, fmt.Errorf("reading openings from %s: %w", path, err)
	}
	return b, nil
}

// ReadBook parses dataset CSV content. The header row and any row that
// does not have exactly five fields are skipped.
func ReadBook(r io.Reader) (*Book, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	ops := []Opening{}
	for i, record := range records {
		if i == 0 {
			continue
		}
		if len(record) != 5 {
			continue
		}

		// The move field reads "1. e4 e5 2. Nf3 ..."; every third
		// token is a turn number.
		mvs := []string{}
		for j, trn := range strings.Fields(record[0]) {
			if j%3 == 0 {
				continue
			}
			mvs = append(mvs, trn)
		}

		var fens []string
		if record[4] != "" {
			fens = strings.Split(record[4], ",")
		}

		ops = append(ops, Opening{
			Moves:         mvs,
			ECO:           record[1],
			Name:          record[2],
			ResultFEN:     record[3],
			SequenceFENs:  fens,
			SequenceMoves: record[0],
		})
	}

	return &Book{ops: ops}, nil
}

// Len returns the number of openings in the book.
func (b *Book) Len() int {
	return len(b.ops)
}

// All iterates over every opening in dataset order.
func (b *Book) All() iter.Seq[Opening] {
	return func(yield func(Opening) bool) {
		for _, op := range b.ops {
			if !yield(op) {
				break
			}
		}
	}
}

// FindByECO returns the first opening carrying the given ECO code.
func (b *Book) FindByECO(eco string) (*Opening, bool) {
	for _, op := range b.ops {
		if op.ECO == eco {
			return &op, true
		}
	}
	return nil, false
}

// FindByFEN returns the first opening whose final position equals fen.
func (b *Book) FindByFEN(fen string) (*Opening, bool) {
	for _, op := range b.ops {
		if op.ResultFEN == fen {
			return &op, true
		}
	}
	return nil, false
}

// VariationsByFEN collects, across all openings whose sequence passes
// through fen, the unique follow-up FENs from that position onward
// (excluding each sequence's final position). The bool reports whether
// anything was found.
func (b *Book) VariationsByFEN(fen string) ([]string, bool) {
	mtchs := []string{}

	for _, op := range b.ops {
		l := len(op.SequenceFENs)
		if l <= 1 {
			continue
		}
		if i := slices.Index(op.SequenceFENs[:l-1], fen); i >= 0 {
			for _, s := range op.SequenceFENs[i : l-1] {
				if slices.Contains(mtchs, s) {
					continue
				}
				mtchs = append(mtchs, s)
			}
		}
	}

	return mtchs, len(mtchs) > 0
}
