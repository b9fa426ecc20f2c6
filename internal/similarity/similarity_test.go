package similarity_test

import (
	"testing"

	"grievgo/backend/internal/similarity"

	"github.com/stretchr/testify/assert"
)

// TestScoreIdentity verifies that any string scores 1 against itself.
func TestScoreIdentity(t *testing.T) {
	inputs := []string{
		"a",
		"pothole",
		"Pothole on Main Street near 12th Ave",
		"вулиця без освітлення",
	}
	for _, s := range inputs {
		assert.InDelta(t, 1.0, similarity.Score(s, s), 1e-9, "identical input %q must score 1", s)
	}
}

// TestScoreEmptyEdgeCases covers the documented empty-string behavior.
func TestScoreEmptyEdgeCases(t *testing.T) {
	assert.Equal(t, 1.0, similarity.Score("", ""), "both empty must score 1")
	assert.Equal(t, 0.0, similarity.Score("", "abc"), "one empty must score 0")
	assert.Equal(t, 0.0, similarity.Score("abc", ""), "one empty must score 0")

	// Whitespace-only strings normalize to empty.
	assert.Equal(t, 1.0, similarity.Score("   ", "\t\n"))
	assert.Equal(t, 0.0, similarity.Score("   ", "abc"))
}

// TestScoreSingleCharacter ensures single-character strings never divide by zero.
func TestScoreSingleCharacter(t *testing.T) {
	assert.Equal(t, 1.0, similarity.Score("a", "A"), "same char, different case")
	assert.Equal(t, 0.0, similarity.Score("a", "b"), "different single chars")
	assert.Equal(t, 0.0, similarity.Score("a", "bc"))
}

// TestScoreSymmetry verifies Score(a,b) == Score(b,a).
func TestScoreSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"pothole on main street", "pothole near main street"},
		{"broken streetlight", "street light broken"},
		{"", "water leakage"},
		{"x", "xy"},
	}
	for _, p := range pairs {
		assert.Equal(t, similarity.Score(p[0], p[1]), similarity.Score(p[1], p[0]),
			"Score must be symmetric for %q / %q", p[0], p[1])
	}
}

// TestScoreNormalization checks whitespace and casing are ignored.
func TestScoreNormalization(t *testing.T) {
	score := similarity.Score(
		"Pothole on Main Street near 12th Ave",
		"pothole   on MAIN street\tnear 12th ave",
	)
	assert.Equal(t, 1.0, score, "inputs differing only in spacing/casing must score 1")
}

// TestScoreNearDuplicate reproduces the duplicate-detection scenario:
// a near-identical description must clear the 0.85 threshold.
func TestScoreNearDuplicate(t *testing.T) {
	score := similarity.Score(
		"Pothole on Main Street near 12th Ave",
		"pothole on main street near 12th ave!!",
	)
	assert.Greater(t, score, 0.85)

	unrelated := similarity.Score(
		"Pothole on Main Street near 12th Ave",
		"Garbage not collected in Sector 14 for a week",
	)
	assert.Less(t, unrelated, 0.85)
}

// TestScoreMultisetCounting verifies repeated bigrams match with multiplicity.
func TestScoreMultisetCounting(t *testing.T) {
	// "aaa" has bigrams [aa aa], "aab" has [aa ab]: only one "aa" can be
	// consumed, so the intersection counts 1, not 2.
	score := similarity.Score("aaa", "aab")
	assert.InDelta(t, 2.0*1.0/4.0, score, 1e-9)
}

// TestScoreRange checks the score stays within [0,1] for arbitrary input.
func TestScoreRange(t *testing.T) {
	inputs := []string{"", "a", "ab", "abc", "the quick brown fox", "aaaaaa", "!!!", "12 34 56"}
	for _, a := range inputs {
		for _, b := range inputs {
			s := similarity.Score(a, b)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}
