package normalize

import (
	"strings"

	"golang.org/x/text/runes"
)

// corporateTypes lists the legal-form tokens removed from organization names.
var corporateTypes = strings.NewReplacer(
	"株式会社", "",
	"有限会社", "",
	"合同会社", "",
)

// nameSymbols is the set of punctuation removed from names. It covers dash
// and long-vowel marks, the middle dot, commas and periods, exclamation and
// question marks, and paired brackets in ASCII and Japanese forms.
var nameSymbols = map[rune]struct{}{
	'‐': {}, 'ー': {}, 'ｰ': {}, '・': {},
	',': {}, '、': {}, '。': {},
	'!': {}, '！': {}, '?': {}, '？': {},
	'(': {}, ')': {}, '（': {}, '）': {},
	'[': {}, ']': {}, '［': {}, '］': {},
	'{': {}, '}': {}, '｛': {}, '｝': {},
	'【': {}, '】': {},
	'「': {}, '」': {}, '『': {}, '』': {},
}

var symbolRemover = runes.Remove(runes.Predicate(func(r rune) bool {
	_, ok := nameSymbols[r]
	return ok
}))

// Name returns the canonical comparable form of an organization name:
// corporate-entity tokens removed, full-width alphanumerics folded, symbols
// and whitespace removed, and the result lower-cased.
//
// The result is a fixed point: Name(Name(s)) == Name(s).
func Name(s string) string {
	if s == "" {
		return ""
	}
	return fixpoint(s, namePasses)
}

func namePasses(s string) string {
	s = RemoveCorporateType(s)
	s = FoldAlnum(s)
	s = RemoveSymbols(s)
	s = RemoveSpaces(s)
	return strings.ToLower(s)
}

// RemoveCorporateType deletes 株式会社, 有限会社 and 合同会社 wherever they
// appear. Surrounding spacing is left as is.
func RemoveCorporateType(s string) string {
	if s == "" {
		return ""
	}
	return corporateTypes.Replace(s)
}

// RemoveSymbols deletes the name punctuation set without inserting spaces.
func RemoveSymbols(s string) string {
	return apply(symbolRemover, s)
}
