package search

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/mnemo-app/mnemo/internal/domain"
)

// Plain strips markup from packed field content and returns plain
// text: tags removed, entities decoded, the field separator and all
// whitespace runs collapsed to single spaces. Case is preserved so the
// result is also usable for display.
func Plain(raw string) string {
	raw = strings.ReplaceAll(raw, domain.FieldSeparator, " ")

	var b strings.Builder
	tz := html.NewTokenizer(strings.NewReader(raw))
	for {
		tt := tz.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(tz.Text())
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// tokenize lowercases plain text and splits it on non-alphanumeric
// runes. Single-rune fragments carry no signal and are dropped.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
