package parser

import (
	"regexp"
	"strings"
)

// linePattern keeps lines holding a number pair (e.g. lot 12/3) followed later
// by a dd/mm date token.
var linePattern = regexp.MustCompile(`\b\d+/\d+\b.*\b\d{2}/\d{2}\b`)

const nbsp = "\u00a0"

// MatchLine normalises non-breaking spaces and reports whether the line is a
// production row. The normalised line is returned either way.
func MatchLine(line string) (string, bool) {
	if !strings.Contains(line, "/") {
		return line, false
	}
	clean := strings.ReplaceAll(line, nbsp, " ")
	return clean, linePattern.MatchString(clean)
}

// FilterLines splits page text on newlines and returns the production rows.
func FilterLines(text string) []string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if clean, ok := MatchLine(line); ok {
			kept = append(kept, clean)
		}
	}
	return kept
}
