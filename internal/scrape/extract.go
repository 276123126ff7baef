// FILE: internal/scrape/extract.go
package scrape

import (
	"strings"

	"golang.org/x/net/html"
)

// sectionID marks the div holding the opening list on a reference page.
const sectionID = "rel_ops2"

// RawEntry is one extracted list item: the opening's display name and
// its move text exactly as it appears in the markup.
type RawEntry struct {
	Name  string
	Moves string
}

// ExtractEntries scans one page for the sentinel section and pulls out
// its (name, moves) list items. The scan is a single pass over the tag
// stream with flat memory; malformed markup never fails, the scan just
// stops emitting when the stream ends. Every call starts from a fresh
// scanner, so pages can be processed concurrently if needed.
func ExtractEntries(doc string) []RawEntry {
	z := html.NewTokenizer(strings.NewReader(doc))
	s := &sectionScanner{}

	for {
		switch z.Next() {
		case html.ErrorToken:
			return s.entries
		case html.StartTagToken:
			tag, id := tagAndID(z)
			s.startTag(tag, id)
		case html.SelfClosingTagToken:
			tag, id := tagAndID(z)
			s.startTag(tag, id)
			s.endTag(tag)
		case html.EndTagToken:
			name, _ := z.TagName()
			s.endTag(string(name))
		case html.TextToken:
			s.text(string(z.Text()))
		}
	}
}

func tagAndID(z *html.Tokenizer) (string, string) {
	name, hasAttr := z.TagName()
	tag := string(name)

	var id string
	for hasAttr {
		key, val, more := z.TagAttr()
		if string(key) == "id" {
			id = string(val)
		}
		hasAttr = more
	}
	return tag, id
}

// sectionScanner is the extraction state machine for a single document:
// whether the sentinel section is open and how deeply divs are nested
// inside it, plus the accumulator for the list item being read.
type sectionScanner struct {
	entries []RawEntry

	inSection bool
	depth     int

	open         bool // a list item accumulator is open
	name         string
	moves        string
	readingName  bool
	readingMoves bool
}

func (s *sectionScanner) startTag(tag, id string) {
	// A sentinel div always (re)opens the section at depth 1, even when
	// nested inside an already-open section.
	if tag == "div" && id == sectionID {
		s.inSection = true
		s.depth = 1
		return
	}
	if s.inSection && tag == "div" {
		s.depth++
	}
	if !s.inSection {
		return
	}

	switch tag {
	case "li":
		s.open = true
		s.name = ""
		s.moves = ""
		s.readingName = false
		s.readingMoves = false
	case "a":
		if s.open {
			s.readingName = true
		}
	case "br":
		if s.open {
			s.readingName = false
			s.readingMoves = true
		}
	}
}

func (s *sectionScanner) endTag(tag string) {
	if s.inSection && tag == "li" && s.open {
		name := strings.TrimSpace(s.name)
		moves := strings.TrimSpace(s.moves)
		if name != "" && moves != "" {
			s.entries = append(s.entries, RawEntry{Name: name, Moves: moves})
		}
		s.open = false
		s.name = ""
		s.moves = ""
		s.readingName = false
		s.readingMoves = false
	}

	if tag == "a" && s.readingName {
		s.readingName = false
	}

	if s.inSection && tag == "div" {
		s.depth--
		if s.depth <= 0 {
			s.inSection = false
		}
	}
}

// text dispatches character data to whichever buffer is active. The
// name check comes first: a link opening mid-moves redirects text back
// to the name buffer until it closes.
func (s *sectionScanner) text(data string) {
	if !s.inSection || !s.open {
		return
	}
	if s.readingName {
		s.name += data
	} else if s.readingMoves {
		s.moves += data
	}
}
