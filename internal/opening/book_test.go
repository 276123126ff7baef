// FILE: internal/opening/book_test.go
package opening

import (
	"strings"
	"testing"

	"eco/internal/testutil"
)

const bookCSV = `Moves,ECO,Name,ResultFEN,SequenceFENs
1. e4 e5 2. Nf3 Nc6,C60,Ruy Lopez,fen-b,"fen-s,fen-a,fen-b"
1. e4 e5 2. Nf3 f5,C40,Latvian Gambit,fen-c,"fen-s,fen-a,fen-c"
short,row
1. d4 d5,D00,Queen's Pawn Game,fen-d,"fen-s,fen-d"
`

func loadTestBook(t *testing.T) *Book {
	t.Helper()
	b, err := ReadBook(strings.NewReader(bookCSV))
	testutil.NoError(t, err)
	return b
}

func TestReadBook(t *testing.T) {
	b := loadTestBook(t)

	// Header and the two-field row are skipped.
	if b.Len() != 3 {
		t.Fatalf("got %d openings; want 3", b.Len())
	}

	op, ok := b.FindByECO("C60")
	testutil.True(t, ok, "FindByECO C60")
	testutil.Equal(t, op.Moves, []string{"e4", "e5", "Nf3", "Nc6"})
	testutil.Equal(t, op.SequenceFENs, []string{"fen-s", "fen-a", "fen-b"})
	if op.SequenceMoves != "1. e4 e5 2. Nf3 Nc6" {
		t.Errorf("got raw moves %q", op.SequenceMoves)
	}
}

func TestBookLookups(t *testing.T) {
	b := loadTestBook(t)

	t.Run("by ECO miss", func(t *testing.T) {
		_, ok := b.FindByECO("E99")
		testutil.True(t, !ok, "unknown code")
	})

	t.Run("by FEN", func(t *testing.T) {
		op, ok := b.FindByFEN("fen-c")
		testutil.True(t, ok, "FindByFEN fen-c")
		if op.Name != "Latvian Gambit" {
			t.Errorf("got name %q; want %q", op.Name, "Latvian Gambit")
		}
	})

	t.Run("variations from shared position", func(t *testing.T) {
		// fen-a occurs mid-sequence in two openings; the collected
		// continuations include the queried position itself and
		// exclude each sequence's final FEN.
		fens, ok := b.VariationsByFEN("fen-a")
		testutil.True(t, ok, "variations at fen-a")
		testutil.Equal(t, fens, []string{"fen-a"})
	})

	t.Run("variations with continuations", func(t *testing.T) {
		fens, ok := b.VariationsByFEN("fen-s")
		testutil.True(t, ok, "variations at fen-s")
		testutil.Equal(t, fens, []string{"fen-s", "fen-a"})
	})

	t.Run("no variations at final positions", func(t *testing.T) {
		_, ok := b.VariationsByFEN("fen-b")
		testutil.True(t, !ok, "final FEN has no continuations")
	})
}

func TestBookAll(t *testing.T) {
	b := loadTestBook(t)

	var codes []string
	for op := range b.All() {
		codes = append(codes, op.ECO)
	}
	testutil.Equal(t, codes, []string{"C60", "C40", "D00"})
}
