// Package key derives translation keys from free text.
//
// A key is uppercase ASCII letters separated by single underscores:
//
//	".foo-bar. apple."  ->  FOO_BAR_APPLE
//	"Don't panic!"      ->  DON_T_PANIC
//
// Every run of characters outside [A-Za-z] (whitespace, punctuation,
// digits, non-Latin letters) collapses to one underscore, and leading or
// trailing separators are dropped. Text without any ASCII letter yields the
// empty key. Two different texts may derive the same key; resolving that is
// the job of the merge package.
package key

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Separator joins the words of a key.
const Separator = '_'

// Deriver converts text to keys. The zero value is the default deriver.
type Deriver struct {
	// FoldAccents strips combining marks before uppercasing so that
	// "Café" becomes CAFE instead of CAF.
	FoldAccents bool
}

// Derive returns the key for text using the default deriver.
func Derive(text string) string {
	return Deriver{}.Derive(text)
}

// Derive returns the key for text. It never fails.
func (d Deriver) Derive(text string) string {
	if d.FoldAccents {
		text = foldAccents(text)
	}

	// Full case mapping: "ß" becomes "SS", "ﬁ" becomes "FI".
	upper := cases.Upper(language.Und).String(text)

	var b strings.Builder
	b.Grow(len(upper))
	pending := false
	for _, r := range upper {
		if !isKeyLetter(r) {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteByte(Separator)
		}
		pending = false
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Valid reports whether s has the shape of a derived key. The empty string
// is a valid, degenerate key.
func Valid(s string) bool {
	prev := rune(Separator)
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
		case r == Separator:
			if prev == Separator {
				return false
			}
		default:
			return false
		}
		prev = r
	}
	return s == "" || prev != Separator
}

func isKeyLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
