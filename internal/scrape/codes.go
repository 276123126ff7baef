// FILE: internal/scrape/codes.go
package scrape

import "fmt"

// Codes enumerates the full ECO code space in order, A00 through E99.
func Codes() []string {
	codes := make([]string, 0, 500)
	for _, letter := range "ABCDE" {
		for i := 0; i < 100; i++ {
			codes = append(codes, fmt.Sprintf("%c%02d", letter, i))
		}
	}
	return codes
}

// IsCode reports whether s is a well-formed ECO code.
func IsCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	return s[0] >= 'A' && s[0] <= 'E' &&
		s[1] >= '0' && s[1] <= '9' &&
		s[2] >= '0' && s[2] <= '9'
}
