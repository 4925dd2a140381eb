package similarity

// isPrefectureSuffix reports whether r is one of 都/道/府/県. City tokens
// never contain these.
func isPrefectureSuffix(r rune) bool {
	switch r {
	case '都', '道', '府', '県':
		return true
	}
	return false
}

// isMunicipalSuffix reports whether r closes a city-level token.
func isMunicipalSuffix(r rune) bool {
	switch r {
	case '市', '区', '町', '村':
		return true
	}
	return false
}

// ExtractCity returns the first city/ward/town/village token of s: the
// leftmost, shortest run of at least one rune outside 都/道/府/県 that is
// followed by 市/区/町/村, suffix included. s should already have its
// prefecture removed.
func ExtractCity(s string) (string, bool) {
	rs := []rune(s)
	for start := 0; start < len(rs); start++ {
		if isPrefectureSuffix(rs[start]) {
			continue
		}
		for end := start + 1; end < len(rs); end++ {
			if isMunicipalSuffix(rs[end]) {
				return string(rs[start : end+1]), true
			}
			if isPrefectureSuffix(rs[end]) {
				break
			}
		}
	}
	return "", false
}

// CommonPrefixLen counts the runes a and b share from the start.
func CommonPrefixLen(a, b []rune) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
