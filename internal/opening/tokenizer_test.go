// FILE: internal/opening/tokenizer_test.go
package opening

import (
	"strings"
	"testing"

	"eco/internal/testutil"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "castling long before short",
			raw:  "1.O-O-O O-O",
			want: []string{"0-0-0", "0-0"},
		},
		{
			name: "annotations and variations stripped",
			raw:  "1.e4! e5? (1...c5) 2.Nf3+",
			want: []string{"e4", "e5", "Nf3"},
		},
		{
			name: "entities and non-breaking spaces",
			raw:  "1.e4 e5 2.Nf3&nbsp;Nc6 &amp; more",
			want: []string{"e4", "e5", "Nf3", "Nc6", "&", "more"},
		},
		{
			name: "dashes become hyphens",
			raw:  "e4 – e5 — Nf3",
			want: []string{"e4", "-", "e5", "-", "Nf3"},
		},
		{
			name: "unclosed parenthesis survives",
			raw:  "1.e4 (sideline e5",
			want: []string{"e4", "(sideline", "e5"},
		},
		{
			name: "paren groups end at nearest close",
			raw:  "1.e4 (good (deep) stuff) e5",
			want: []string{"e4", "stuff)", "e5"},
		},
		{
			name: "mate and check marks",
			raw:  "25.Qxf7#",
			want: []string{"Qxf7"},
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
		{
			name: "whitespace only",
			raw:  "   \t\n  ",
			want: nil,
		},
		{
			name: "bare move numbers dropped",
			raw:  "1. e4 e5 2. Nf3",
			want: []string{"e4", "e5", "Nf3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.Equal(t, Normalize(tt.raw), tt.want)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"1.e4! e5? (1...c5) 2.Nf3+",
		"1.O-O-O O-O",
		"1.d4 Nf6 2.c4 g6 3.Nc3 Bg7",
		"e4&nbsp;e5 – sideline (skip me)",
		"",
	}

	for _, raw := range inputs {
		once := Normalize(raw)
		again := Normalize(strings.Join(once, " "))
		testutil.Equal(t, again, once)
	}
}
