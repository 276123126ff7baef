// FILE: internal/scrape/extract_test.go
package scrape

import (
	"testing"

	"eco/internal/testutil"
)

func TestExtractEntries(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []RawEntry
	}{
		{
			name: "minimal section",
			doc: `<html><body>
<div id="rel_ops2"><ul>
<li><a href="/x">Italian Game</a><br>1.e4 e5 2.Nf3</li>
</ul></div>
</body></html>`,
			want: []RawEntry{{Name: "Italian Game", Moves: "1.e4 e5 2.Nf3"}},
		},
		{
			name: "items outside the section are ignored",
			doc: `<ul><li><a>Elsewhere</a><br>1.d4</li></ul>
<div id="rel_ops2"><ul><li><a>Inside</a><br>1.e4</li></ul></div>
<ul><li><a>After</a><br>1.c4</li></ul>`,
			want: []RawEntry{{Name: "Inside", Moves: "1.e4"}},
		},
		{
			name: "incomplete items are dropped",
			doc: `<div id="rel_ops2"><ul>
<li><a>No Moves</a><br>   </li>
<li><br>1.e4 e5</li>
<li><a>Complete</a><br>1.e4</li>
</ul></div>`,
			want: []RawEntry{{Name: "Complete", Moves: "1.e4"}},
		},
		{
			name: "nested divs stay in section",
			doc: `<div id="rel_ops2"><div class="inner"><ul>
<li><a>Sicilian</a><br>1.e4 c5</li>
</ul></div><ul>
<li><a>French</a><br>1.e4 e6</li>
</ul></div>
<li><a>Outside</a><br>1.d4</li>`,
			want: []RawEntry{
				{Name: "Sicilian", Moves: "1.e4 c5"},
				{Name: "French", Moves: "1.e4 e6"},
			},
		},
		{
			name: "self closing break",
			doc:  `<div id="rel_ops2"><li><a>Caro-Kann</a><br/>1.e4 c6</li></div>`,
			want: []RawEntry{{Name: "Caro-Kann", Moves: "1.e4 c6"}},
		},
		{
			name: "nested sentinel resets depth",
			doc: `<div id="rel_ops2">
<li><a>First</a><br>1.e4</li>
<div id="rel_ops2"></div>
<li><a>Second</a><br>1.d4</li>
</div>`,
			want: []RawEntry{{Name: "First", Moves: "1.e4"}},
		},
		{
			name: "link inside the move run goes to the name buffer",
			doc:  `<div id="rel_ops2"><li><a>Scotch</a><br>1.e4 e5 <a>2.Nf3</a> Nc6</li></div>`,
			want: []RawEntry{{Name: "Scotch2.Nf3", Moves: "1.e4 e5  Nc6"}},
		},
		{
			name: "truncated markup keeps completed items",
			doc:  `<div id="rel_ops2"><li><a>Done</a><br>1.e4</li><li><a>Half`,
			want: []RawEntry{{Name: "Done", Moves: "1.e4"}},
		},
		{
			name: "no sentinel section",
			doc:  `<div id="other"><li><a>Name</a><br>1.e4</li></div>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.Equal(t, ExtractEntries(tt.doc), tt.want)
		})
	}
}

func TestExtractEntriesFreshState(t *testing.T) {
	// A half-open item must not leak into the next document.
	first := `<div id="rel_ops2"><li><a>Leaky</a><br>1.e4`
	second := `<div id="rel_ops2"><li><a>Clean</a><br>1.d4</li></div>`

	testutil.Equal(t, ExtractEntries(first), []RawEntry(nil))
	testutil.Equal(t, ExtractEntries(second), []RawEntry{{Name: "Clean", Moves: "1.d4"}})
}
