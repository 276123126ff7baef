// FILE: internal/dataset/dataset_test.go
package dataset

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"eco/internal/opening"
	"eco/internal/testutil"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openings.csv")
	testutil.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadRejectsBadHeader(t *testing.T) {
	path := writeTemp(t, "Moves,Name,ECO,ResultFEN,SequenceFENs\n1.e4,,King's Pawn,f,s\n")

	_, err := Read(path)
	testutil.Error(t, err)
	testutil.Contains(t, err.Error(), "unexpected header")
}

func TestReadRejectsShortRecord(t *testing.T) {
	path := writeTemp(t, "Moves,ECO,Name,ResultFEN,SequenceFENs\n1.e4,only-two\n")

	_, err := Read(path)
	testutil.Error(t, err)
}

func TestAnnotateRoundTrip(t *testing.T) {
	path := writeTemp(t, "Moves,ECO,Name,ResultFEN,SequenceFENs\n"+
		"1.e4 e5 2.Nf3 Nc6,,Ruy Lopez,fen-1,\"fen-a,fen-1\"\n"+
		"1.h4 h5,X99,Kadas Opening,fen-2,fen-b\n")

	catalog := opening.NewCatalog([]opening.Entry{
		{Code: "C50", Tokens: []string{"e4", "e5"}},
		{Code: "C60", Tokens: []string{"e4", "e5", "Nf3"}},
	})

	rows, err := Read(path)
	testutil.NoError(t, err)
	if len(rows) != 2 {
		t.Fatalf("got %d rows; want 2", len(rows))
	}

	var logged bytes.Buffer
	log.SetOutput(&logged)
	defer log.SetOutput(os.Stderr)

	matched := Annotate(rows, catalog)
	if matched != 1 {
		t.Errorf("got %d matched rows; want 1", matched)
	}

	// The matchable row gets the most specific code; the unmatched row
	// is cleared, warned about, and does not stop the pass.
	if rows[0].ECO != "C60" {
		t.Errorf("got ECO %q; want C60", rows[0].ECO)
	}
	if rows[1].ECO != "" {
		t.Errorf("got ECO %q; want empty", rows[1].ECO)
	}
	testutil.Contains(t, logged.String(), "warning: could not match moves '1.h4 h5'")

	testutil.NoError(t, Write(path, rows))

	raw, err := os.ReadFile(path)
	testutil.NoError(t, err)
	want := "Moves,ECO,Name,ResultFEN,SequenceFENs\n" +
		"1.e4 e5 2.Nf3 Nc6,C60,Ruy Lopez,fen-1,\"fen-a,fen-1\"\n" +
		"1.h4 h5,,Kadas Opening,fen-2,fen-b\n"
	if string(raw) != want {
		t.Errorf("rewritten file mismatch:\ngot:\n%s\nwant:\n%s", raw, want)
	}

	// Reading the rewritten file yields the same rows.
	again, err := Read(path)
	testutil.NoError(t, err)
	testutil.Equal(t, again, rows)
}
