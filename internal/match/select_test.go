package match

import (
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/orglink/internal/model"
)

// fixed scores candidates by a lookup table keyed on the candidate value.
func fixed(scores map[string]float64) Scorer {
	return func(_, b string) float64 { return scores[b] }
}

func identity(s string) string { return s }

func TestSelect_Empty(t *testing.T) {
	t.Parallel()

	s := Selector[string]{Field: identity, Score: fixed(nil), Threshold: DefaultThreshold}
	res, err := s.Select("q", nil)
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Equal(t, -1, res.Index)
	assert.Equal(t, "", res.Candidate)

	// Both candidate selectors use the same explicit no-match.
	for _, sel := range []Selector[model.Candidate]{ByLocation(DefaultThreshold), ByName(DefaultThreshold)} {
		res, err := sel.Select("q", []model.Candidate{})
		require.NoError(t, err)
		assert.Equal(t, NoMatch[model.Candidate](), res)
	}
}

func TestSelect_BelowThreshold(t *testing.T) {
	t.Parallel()

	s := Selector[string]{Field: identity, Score: fixed(map[string]float64{"a": 0.3, "b": 0.69}), Threshold: 0.7}
	res, err := s.Select("q", []string{"a", "b"})
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Equal(t, -1, res.Index)
}

func TestSelect_ExactlyAtThreshold(t *testing.T) {
	t.Parallel()

	s := Selector[string]{Field: identity, Score: fixed(map[string]float64{"a": 0.3, "b": 0.7}), Threshold: 0.7}
	res, err := s.Select("q", []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, "b", res.Candidate)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, 0.7, res.Score)
}

func TestSelect_TieKeepsEarliest(t *testing.T) {
	t.Parallel()

	scores := map[string]float64{"a": 0.5, "b": 0.9, "c": 0.9, "d": 0.9}
	s := Selector[string]{Field: identity, Score: fixed(scores), Threshold: 0.7}
	for range 20 {
		res, err := s.Select("q", []string{"a", "b", "c", "d"})
		require.NoError(t, err)
		assert.Equal(t, "b", res.Candidate)
		assert.Equal(t, 1, res.Index)
	}
}

func TestSelect_ThresholdZeroMatchesFirst(t *testing.T) {
	t.Parallel()

	s := Selector[string]{Field: identity, Score: fixed(nil), Threshold: 0}
	res, err := s.Select("q", []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, "a", res.Candidate)
	assert.Equal(t, 0.0, res.Score)
}

func TestSelect_InvalidThreshold(t *testing.T) {
	t.Parallel()

	for _, th := range []float64{-0.1, 1.01, math.NaN(), math.Inf(1)} {
		s := Selector[string]{Field: identity, Score: fixed(nil), Threshold: th}
		res, err := s.Select("q", []string{"a"})
		require.Error(t, err)
		assert.True(t, eris.Is(err, ErrInvalidThreshold))
		assert.False(t, res.Matched)
	}

	for _, th := range []float64{0, 0.7, 1} {
		assert.NoError(t, ValidateThreshold(th))
	}
}

func TestByLocation(t *testing.T) {
	t.Parallel()

	candidates := []model.Candidate{
		{CompanyName: "FOO", Location: "埼玉県春日部市南栄町11-7"},
		{CompanyName: "FOO", Location: "岩手県FOO市BAR区佐倉河字BAZ71"},
		{CompanyName: "FOO", Location: "岩手県FOO市BAR区佐倉河字BAZ71"},
	}
	res, err := ByLocation(DefaultThreshold).Select("岩手県FOO市BAR佐倉河字BAZ71番地", candidates)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, 1.0, res.Score)

	res, err = ByLocation(DefaultThreshold).Select("大阪府大阪市中央区本町4-4-12", candidates[:1])
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

func TestByName(t *testing.T) {
	t.Parallel()

	candidates := []model.Candidate{
		{CompanyName: "別の会社"},
		{CompanyName: ""},
		{CompanyName: "FOO 株式会社"},
	}
	res, err := ByName(DefaultThreshold).Select("FOO", candidates)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 2, res.Index)
	assert.Equal(t, "FOO 株式会社", res.Candidate.CompanyName)

	res, err = ByName(DefaultThreshold).Select("全然違う会社", candidates)
	require.NoError(t, err)
	assert.False(t, res.Matched)
}
