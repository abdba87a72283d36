// Package slug derives public, human-readable identifiers from titles.
//
// Make is a pure, one-way transform: "Hello World!" -> "hello-world". The
// storage layer persists the result next to the title at write time and
// resolves lookups against that column, so nothing ever has to invert the
// transform.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Separator joins slug words.
const Separator = "-"

// A few Latin letters carry strokes instead of combining marks, so NFD
// leaves them intact; fold them explicitly.
var stroked = map[rune]string{
	'ł': "l", 'Ł': "l",
	'ø': "o", 'Ø': "o",
	'đ': "d", 'Đ': "d",
	'ð': "d", 'Ð': "d",
	'þ': "th", 'Þ': "th",
	'ß': "ss",
	'æ': "ae", 'Æ': "ae",
	'œ': "oe", 'Œ': "oe",
}

// Make returns the slug for a title: diacritics and stroked letters folded,
// lowercased, with every run of non-alphanumeric characters collapsed into
// one separator. Deterministic; never returns leading or trailing separators.
func Make(title string) string {
	// NFD splits precomposed characters so combining marks can be dropped
	// ("Zażółć" -> "Zazolc" before lowering).
	decomposed := norm.NFD.String(title)

	var b strings.Builder
	b.Grow(len(decomposed))
	pendingSep := false
	writeWord := func(word string) {
		if pendingSep && b.Len() > 0 {
			b.WriteString(Separator)
		}
		pendingSep = false
		b.WriteString(word)
	}
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark from the NFD decomposition; drop it
		case stroked[r] != "":
			writeWord(stroked[r])
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			writeWord(string(unicode.ToLower(r)))
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// Matches reports whether title slugs to s. Both sides are normalized, so
// the comparison is case-insensitive and tolerant of punctuation the slug
// could not carry ("Hello World!" matches "hello-world").
func Matches(title, s string) bool {
	return Make(title) == Make(s)
}
