// FILE: internal/opening/catalog_test.go
package opening

import (
	"testing"

	"eco/internal/testutil"
)

func testCatalog() Catalog {
	// Deliberately inserted shortest-first; NewCatalog must reorder.
	return NewCatalog([]Entry{
		{Code: "C50", Name: "Italian Game", Tokens: []string{"e4", "e5"}},
		{Code: "C60", Name: "Ruy Lopez", Tokens: []string{"e4", "e5", "Nf3"}},
	})
}

func TestCatalogMatch(t *testing.T) {
	cat := testCatalog()

	t.Run("most specific wins", func(t *testing.T) {
		e, err := cat.Match([]string{"e4", "e5", "Nf3", "Nc6"})
		testutil.NoError(t, err)
		if e.Code != "C60" {
			t.Errorf("got code %q; want %q", e.Code, "C60")
		}
	})

	t.Run("exact length match", func(t *testing.T) {
		e, err := cat.Match([]string{"e4", "e5"})
		testutil.NoError(t, err)
		if e.Code != "C50" {
			t.Errorf("got code %q; want %q", e.Code, "C50")
		}
	})

	t.Run("no prefix match", func(t *testing.T) {
		_, err := cat.Match([]string{"d4"})
		testutil.ErrorIs(t, err, ErrNoMatch)
	})

	t.Run("empty query never matches", func(t *testing.T) {
		_, err := cat.Match(nil)
		testutil.ErrorIs(t, err, ErrNoMatch)
	})
}

func TestNewCatalog(t *testing.T) {
	t.Run("drops empty sequences", func(t *testing.T) {
		cat := NewCatalog([]Entry{
			{Code: "A00", Name: "Start"},
			{Code: "B00", Name: "King's Pawn", Tokens: []string{"e4"}},
		})
		if cat.Len() != 1 {
			t.Fatalf("got %d entries; want 1", cat.Len())
		}
		if cat.Entries()[0].Code != "B00" {
			t.Errorf("got code %q; want %q", cat.Entries()[0].Code, "B00")
		}
	})

	t.Run("sorts longest first keeping tie order", func(t *testing.T) {
		cat := NewCatalog([]Entry{
			{Code: "B00", Tokens: []string{"e4"}},
			{Code: "B20", Tokens: []string{"e4", "c5"}},
			{Code: "C20", Tokens: []string{"e4", "e5"}},
			{Code: "A40", Tokens: []string{"d4"}},
		})

		var codes []string
		for _, e := range cat.Entries() {
			codes = append(codes, e.Code)
		}
		testutil.Equal(t, codes, []string{"B20", "C20", "B00", "A40"})
	})
}
