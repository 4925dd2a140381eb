package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/sells-group/orglink/internal/normalize"
)

// Name compares two raw organization names. Equal normalized names score
// 1.0; when one contains the other the score is shorter/longer in runes;
// otherwise 0.0. Empty input on either side scores 0.0.
func Name(a, b string) float64 {
	if a == "" || b == "" {
		return ScoreNone
	}
	na, nb := normalize.Name(a), normalize.Name(b)
	if na == "" || nb == "" {
		return ScoreNone
	}
	if na == nb {
		return ScoreExact
	}
	if !strings.Contains(na, nb) && !strings.Contains(nb, na) {
		return ScoreNone
	}
	la, lb := utf8.RuneCountInString(na), utf8.RuneCountInString(nb)
	return float64(min(la, lb)) / float64(max(la, lb))
}
