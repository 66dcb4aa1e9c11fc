// Package textnorm normalizes résumé and job description text and extracts
// contact details, experience and named sections with ordered regex rules.
package textnorm

import "strings"

// Clean lowercases text, replaces every character except ASCII word characters,
// '+', '#', '.' and '-' with a space, collapses whitespace and trims.
// Clean is idempotent.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	mapped := strings.Map(func(r rune) rune {
		if keepRune(r) {
			return r
		}
		return ' '
	}, strings.ToLower(text))

	return strings.Join(strings.Fields(mapped), " ")
}

func keepRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '+', r == '#', r == '.', r == '-':
		return true
	}
	return false
}
