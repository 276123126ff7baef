// FILE: internal/opening/tokenizer.go
package opening

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var parenRE = regexp.MustCompile(`\([^)]*\)`)

// Long castling must be rewritten before short castling, otherwise
// "O-O-O" decays into "0-0-O".
var moveReplacer = strings.NewReplacer(
	" ", " ",
	"O-O-O", "0-0-0",
	"O-O", "0-0",
	"–", "-",
	"—", "-",
)

var punctReplacer = strings.NewReplacer(
	".", " ",
	"!", " ",
	"?", " ",
	"+", " ",
	"#", " ",
	",", " ",
	";", " ",
	":", " ",
)

// Normalize converts a raw move-list string into canonical move tokens:
// entities decoded, castling in zero notation, parenthesized variations
// removed, annotation punctuation stripped, move numbers dropped.
// Re-applying it to its own (space-joined) output is a no-op.
func Normalize(raw string) []string {
	text := html.UnescapeString(raw)
	text = moveReplacer.Replace(text)
	text = parenRE.ReplaceAllString(text, "")
	text = punctReplacer.Replace(text)

	var tokens []string
	for _, tok := range strings.Fields(text) {
		if isMoveNumber(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func isMoveNumber(tok string) bool {
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(tok) > 0
}
