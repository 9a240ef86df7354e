package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// latin letters that render like their cyrillic counterparts
var homoglyphs = map[rune]rune{
	'a': 'а', 'b': 'в', 'c': 'с', 'e': 'е', 'h': 'н', 'k': 'к', 'm': 'м',
	'o': 'о', 'p': 'р', 't': 'т', 'x': 'х', 'y': 'у',
}

// Fold lower-cases s and removes combining marks, so "Отчёт" and "отчет" compare equal.
// Casers and transformers are stateful, so each call builds its own.
func Fold(s string) string {
	lower := cases.Lower(language.Russian).String(s)
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(chain, lower)
	if err != nil {
		return lower
	}
	return out
}

// Unconfuse replaces latin look-alike letters inside words that also contain
// cyrillic letters. Expects folded input.
func Unconfuse(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
	for _, w := range words {
		if !hasCyrillic(w) || !hasLatin(w) {
			continue
		}
		fixed := strings.Map(func(r rune) rune {
			if c, ok := homoglyphs[r]; ok {
				return c
			}
			return r
		}, w)
		s = strings.ReplaceAll(s, w, fixed)
	}
	return s
}

// Tokens folds s and splits it into words, dropping punctuation.
func Tokens(s string) []string {
	folded := Unconfuse(Fold(s))
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Key is the comparison key used for deduplication: case-insensitive with collapsed whitespace.
func Key(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func hasCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

func hasLatin(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Latin, r) {
			return true
		}
	}
	return false
}
