// Package normalize turns raw registry text (addresses, organization names)
// into a canonical form suitable for string comparison.
//
// Every pass is exported on its own so callers and tests can exercise a
// single rule. Address and Name chain the passes in their fixed order.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"
)

// Full-width ranges that are folded to ASCII. Katakana and punctuation are
// left alone.
const (
	fullDigit0 = '０'
	fullDigit9 = '９'
	fullUpperA = 'Ａ'
	fullUpperZ = 'Ｚ'
	fullLowerA = 'ａ'
	fullLowerZ = 'ｚ'
)

func isFullDigit(r rune) bool { return r >= fullDigit0 && r <= fullDigit9 }

func isFullAlnum(r rune) bool {
	return isFullDigit(r) ||
		(r >= fullUpperA && r <= fullUpperZ) ||
		(r >= fullLowerA && r <= fullLowerZ)
}

// narrowIf returns a rune mapping that narrows runes matching keep and
// leaves everything else untouched.
func narrowIf(keep func(rune) bool) func(rune) rune {
	return func(r rune) rune {
		if !keep(r) {
			return r
		}
		if n := width.LookupRune(r).Narrow(); n != 0 {
			return n
		}
		return r
	}
}

// The runes transformers below are stateless and safe for concurrent use.
var (
	digitFolder  = runes.Map(narrowIf(isFullDigit))
	alnumFolder  = runes.Map(narrowIf(isFullAlnum))
	spaceRemover = runes.Remove(runes.Predicate(unicode.IsSpace))
)

func apply(t transform.Transformer, s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FoldDigits converts full-width digits (０-９) to ASCII digits.
func FoldDigits(s string) string {
	return apply(digitFolder, s)
}

// FoldAlnum converts full-width ASCII letters and digits (Ａ-Ｚ, ａ-ｚ, ０-９)
// to their half-width forms.
func FoldAlnum(s string) string {
	return apply(alnumFolder, s)
}

// RemoveSpaces deletes every whitespace rune, including the ideographic
// (full-width) space and newlines.
func RemoveSpaces(s string) string {
	return apply(spaceRemover, s)
}

// fixpoint applies pass until the output stops changing. The passes only
// delete runes after their first application, so this terminates.
func fixpoint(s string, pass func(string) string) string {
	out := pass(s)
	for out != s {
		s = out
		out = pass(s)
	}
	return out
}

// CleanField replaces line breaks with a single ASCII space. Scraped cells
// often carry embedded newlines that break row-oriented output.
func CleanField(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
