package misc

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words splits an identifier into lower-case words.
//
// Boundaries are:
//   - any rune that is neither a letter nor a digit ("-", "_", ".", " ", ...)
//   - a lower-case letter followed by an upper-case one ("readsFile")
//   - the end of an upper-case run followed by a capitalised word
//     ("HTTPServer" is "http", "server")
//   - a change between letters and digits ("utf8Text" is "utf", "8", "text")
//
// An identifier made only of delimiters yields no words.
func Words(ident string) []string {
	lower := cases.Lower(language.Und)
	runes := []rune(ident)

	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, lower.String(string(cur)))
			cur = cur[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				flush()
			case unicode.IsLower(r) && unicode.IsUpper(prev) && len(cur) > 1:
				last := cur[len(cur)-1]
				cur = cur[:len(cur)-1]
				flush()
				cur = append(cur, last)
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}
