package curriculum

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var parenRegex = regexp.MustCompile(`\([^)]*\)`)

// Normalize reduces raw work-name text to its canonical comparable form:
// parenthetical content is dropped, the text is lowered, diacritics are folded,
// punctuation other than dashes becomes whitespace and whitespace runs collapse to one space.
//
// Normalize is total and idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = parenRegex.ReplaceAllString(text, " ")
	text = foldDiacritics(strings.ToLower(text))
	text = strings.Map(func(r rune) rune {
		if r == '-' {
			return r
		}
		if unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsControl(r) {
			return ' '
		}
		return r
	}, text)
	return strings.Join(strings.Fields(text), " ")
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// tokens splits canonical text into the words used for overlap matching (longer than 2 runes).
func tokens(canonical string) []string {
	fields := strings.Fields(canonical)
	toks := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) > 2 {
			toks = append(toks, f)
		}
	}
	return toks
}
