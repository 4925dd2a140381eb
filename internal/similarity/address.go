package similarity

import (
	"strings"

	"github.com/sells-group/orglink/internal/normalize"
)

// Address score bands.
const (
	ScoreExact          = 1.0
	ScoreCityOnly       = 0.8
	ScoreCityBase       = 0.6
	ScoreCityRemainder  = 0.4
	ScorePrefectureOnly = 0.3
	ScoreNone           = 0.0
)

// Address compares two raw addresses hierarchically:
//
//  1. equal after normalization: 1.0
//  2. both prefectures known and different: 0.0
//  3. same city-level token: 0.8 when nothing remains on either side,
//     otherwise 0.6 + 0.4 * sharedPrefix/longerRemainder
//  4. same prefecture only: 0.3
//  5. anything else: 0.0
//
// Empty input on either side, before or after normalization, scores 0.0.
func Address(a, b string) float64 {
	if a == "" || b == "" {
		return ScoreNone
	}
	na, nb := normalize.Address(a), normalize.Address(b)
	if na == "" || nb == "" {
		return ScoreNone
	}
	if na == nb {
		return ScoreExact
	}

	prefA, tokA, okA := ExtractPrefecture(na)
	prefB, tokB, okB := ExtractPrefecture(nb)
	if okA && okB && prefA != prefB {
		return ScoreNone
	}

	restA, restB := na, nb
	if okA {
		restA = strings.ReplaceAll(restA, tokA, "")
	}
	if okB {
		restB = strings.ReplaceAll(restB, tokB, "")
	}

	cityA, cityOKA := ExtractCity(restA)
	cityB, cityOKB := ExtractCity(restB)
	if cityOKA && cityOKB && cityA == cityB {
		return remainderScore(
			[]rune(strings.ReplaceAll(restA, cityA, "")),
			[]rune(strings.ReplaceAll(restB, cityB, "")),
		)
	}

	if okA && okB {
		return ScorePrefectureOnly
	}
	return ScoreNone
}

// remainderScore grades two sub-city remainders by the length of their
// shared prefix relative to the longer one.
func remainderScore(a, b []rune) float64 {
	longer := max(len(a), len(b))
	if longer == 0 {
		return ScoreCityOnly
	}
	common := CommonPrefixLen(a, b)
	return min(ScoreCityBase+float64(common)/float64(longer)*ScoreCityRemainder, ScoreExact)
}
