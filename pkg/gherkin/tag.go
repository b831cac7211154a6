// Package gherkin derives feature tags and normalizes model-generated
// Gherkin text into the layout the rest of the pipeline relies on.
package gherkin

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tag returns the canonical camel-case tag for a feature title:
// "User Login Flow" becomes "@userLoginFlow". An empty title yields "@".
func Tag(title string) string {
	words := strings.Fields(title)

	var b strings.Builder
	b.WriteByte('@')
	for i, word := range words {
		if i == 0 {
			b.WriteString(strings.ToLower(word))
			continue
		}
		r, size := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(word[size:])
	}
	return b.String()
}
