package normalize

import (
	"strings"
	"unicode"
)

// kanjiNumerals maps single kanji numerals to digit strings. The mapping is
// positional only ("十一" becomes "101"); it is meant for matching, not for
// producing readable addresses.
var kanjiNumerals = strings.NewReplacer(
	"一", "1",
	"二", "2",
	"三", "3",
	"四", "4",
	"五", "5",
	"六", "6",
	"七", "7",
	"八", "8",
	"九", "9",
	"十", "10",
)

// addressMarkers lists block/lot markers and hyphen variants that the two
// sources write inconsistently.
var addressMarkers = strings.NewReplacer(
	"番地", "",
	"丁目", "",
	"号", "",
	"−", "",
	"-", "",
)

const (
	postalMark    = '〒'
	maxWardRun    = 10
	wardSuffix    = '区'
	citySuffix    = '市'
	townSuffix    = '町'
	villageSuffix = '村'
)

// Address returns the canonical comparable form of a Japanese address:
// postal code stripped, numerals folded to ASCII digits, whitespace and
// block markers removed, and a ward directly under a city collapsed.
//
// The result is a fixed point: Address(Address(s)) == Address(s).
func Address(s string) string {
	if s == "" {
		return ""
	}
	return fixpoint(s, addressPasses)
}

func addressPasses(s string) string {
	s = StripPostalCode(s)
	s = KanjiNumerals(s)
	s = FoldDigits(s)
	s = RemoveSpaces(s)
	s = RemoveAddressMarkers(s)
	s = CollapseWard(s)
	return s
}

// StripPostalCode removes a leading "〒NNN-NNNN" token and the whitespace
// that follows it. Leading whitespace before the mark is ignored. Digits may
// be ASCII or full-width.
func StripPostalCode(s string) string {
	trimmed := strings.TrimLeftFunc(s, unicode.IsSpace)
	rs := []rune(trimmed)
	// 〒 + 3 digits + '-' + 4 digits
	if len(rs) < 9 || rs[0] != postalMark {
		return s
	}
	for i := 1; i <= 8; i++ {
		if i == 4 {
			if rs[i] != '-' {
				return s
			}
			continue
		}
		if !isDigit(rs[i]) {
			return s
		}
	}
	return strings.TrimLeftFunc(string(rs[9:]), unicode.IsSpace)
}

func isDigit(r rune) bool {
	return (r >= '0' && r <= '9') || isFullDigit(r)
}

// KanjiNumerals substitutes 一..九 with 1..9 and 十 with "10".
func KanjiNumerals(s string) string {
	if s == "" {
		return ""
	}
	return kanjiNumerals.Replace(s)
}

// RemoveAddressMarkers deletes "番地", "丁目", "号" and both hyphen forms.
// Deletion repeats until no marker remains, so "番-地" loses the hyphen and
// then the marker it exposes.
func RemoveAddressMarkers(s string) string {
	if s == "" {
		return ""
	}
	return fixpoint(s, addressMarkers.Replace)
}

// CollapseWard drops the "区" of a ward that directly follows a city:
// "…市XX区…" becomes "…市XX…" when XX is 1-10 runes containing none of
// 市/区/町/村. Matches are found left to right without overlap.
func CollapseWard(s string) string {
	if s == "" || !strings.ContainsRune(s, wardSuffix) {
		return s
	}
	rs := []rune(s)
	out := make([]rune, 0, len(rs))
	for i := 0; i < len(rs); i++ {
		out = append(out, rs[i])
		if rs[i] != citySuffix {
			continue
		}
		end := wardEnd(rs, i)
		if end < 0 {
			continue
		}
		out = append(out, rs[i+1:end]...)
		i = end // skip the 区 itself
	}
	return string(out)
}

// wardEnd returns the index of the 区 closing a ward run that starts right
// after the city mark at i, or -1.
func wardEnd(rs []rune, i int) int {
	for j := i + 1; j < len(rs) && j-i-1 <= maxWardRun; j++ {
		if !isMunicipalSuffix(rs[j]) {
			continue
		}
		if rs[j] == wardSuffix && j-i-1 >= 1 {
			return j
		}
		return -1
	}
	return -1
}

func isMunicipalSuffix(r rune) bool {
	switch r {
	case citySuffix, wardSuffix, townSuffix, villageSuffix:
		return true
	}
	return false
}
