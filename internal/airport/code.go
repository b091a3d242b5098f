package airport

import (
	"regexp"
	"strings"
)

// Suggestion labels look like "Paris (CDG) - Charles de Gaulle".
var codePattern = regexp.MustCompile(`\(([A-Z]{3})\)`)

// ExtractCode returns the last parenthesized three-letter code in label.
// Text without one is returned trimmed but otherwise unchanged, so a code
// typed by hand passes straight through.
func ExtractCode(label string) string {
	label = strings.TrimSpace(label)
	matches := codePattern.FindAllStringSubmatch(label, -1)
	if len(matches) == 0 {
		return label
	}
	return matches[len(matches)-1][1]
}

func Label(city, code, name string) string {
	return city + " (" + code + ") - " + name
}
