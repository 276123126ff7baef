// FILE: internal/client/display/openings.go
package display

import (
	"fmt"
	"strings"
)

// FormatMoves renders SAN tokens as numbered move pairs with colored sides
func FormatMoves(tokens []string) string {
	var b strings.Builder

	for i, move := range tokens {
		if i > 0 {
			b.WriteString(" ")
		}
		if i%2 == 0 {
			// White to move - Blue
			b.WriteString(fmt.Sprintf("%s%d.%s%s%s%s", Cyan, (i/2)+1, Reset, Blue, move, Reset))
		} else {
			// Black reply - Red
			b.WriteString(fmt.Sprintf("%s%s%s", Red, move, Reset))
		}
	}

	return b.String()
}

// RenderOpening prints a single catalog entry with its move line
func RenderOpening(eco, name string, moves []string) {
	fmt.Printf("  %s%s%s  %-40s %s\n", Cyan, eco, Reset, name, FormatMoves(moves))
}

// ColorForState returns a colored refresh run state indicator
func ColorForState(state string) string {
	switch state {
	case "completed":
		return Green + state + Reset
	case "failed":
		return Red + state + Reset
	case "running":
		return Yellow + state + Reset
	default:
		return state
	}
}
