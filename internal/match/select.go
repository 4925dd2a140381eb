// Package match picks the best candidate for a query with a threshold-gated
// arg-max over a similarity score.
package match

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/orglink/internal/model"
	"github.com/sells-group/orglink/internal/similarity"
)

// DefaultThreshold is the minimum score for a candidate to be accepted.
const DefaultThreshold = 0.7

// ErrInvalidThreshold is returned when a threshold is NaN or outside [0, 1].
var ErrInvalidThreshold = eris.New("match: threshold must be within [0, 1]")

// Scorer compares a query value with a candidate value.
type Scorer func(a, b string) float64

// Result is the outcome of a selection. When Matched is false Candidate is
// the zero value and Index is -1.
type Result[T any] struct {
	Candidate T
	Score     float64
	Index     int
	Matched   bool
}

// NoMatch returns the explicit no-match result.
func NoMatch[T any]() Result[T] {
	return Result[T]{Index: -1}
}

// Selector binds a scorer to one field of a candidate type.
type Selector[T any] struct {
	Field     func(T) string
	Score     Scorer
	Threshold float64
}

// ValidateThreshold reports whether t can be used as an acceptance bar.
func ValidateThreshold(t float64) error {
	if math.IsNaN(t) || t < 0 || t > 1 {
		return eris.Wrapf(ErrInvalidThreshold, "got %v", t)
	}
	return nil
}

// Select scores target against every candidate and returns the first
// candidate holding the maximum score, provided that score is at least the
// selector's threshold.
func (s Selector[T]) Select(target string, candidates []T) (Result[T], error) {
	if err := ValidateThreshold(s.Threshold); err != nil {
		return NoMatch[T](), err
	}
	if len(candidates) == 0 {
		return NoMatch[T](), nil
	}

	best, bestScore := 0, s.Score(target, s.Field(candidates[0]))
	for i := 1; i < len(candidates); i++ {
		if score := s.Score(target, s.Field(candidates[i])); score > bestScore {
			best, bestScore = i, score
		}
	}

	if bestScore >= s.Threshold {
		return Result[T]{
			Candidate: candidates[best],
			Score:     bestScore,
			Index:     best,
			Matched:   true,
		}, nil
	}
	return NoMatch[T](), nil
}

// ByLocation selects directory candidates by address similarity against
// their location.
func ByLocation(threshold float64) Selector[model.Candidate] {
	return Selector[model.Candidate]{
		Field:     model.LocationOf,
		Score:     similarity.Address,
		Threshold: threshold,
	}
}

// ByName selects directory candidates by name similarity against their
// company name.
func ByName(threshold float64) Selector[model.Candidate] {
	return Selector[model.Candidate]{
		Field:     model.CompanyNameOf,
		Score:     similarity.Name,
		Threshold: threshold,
	}
}
