package assignment

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recursiveMatch is the textbook recursive formulation of augmentingMatch.
func recursiveMatch(zero [][]bool) []int {
	n := len(zero)
	owner := unmatched(n)

	var try func(row int, seen []bool) bool
	try = func(row int, seen []bool) bool {
		for col := range n {
			if zero[row][col] && !seen[col] {
				seen[col] = true
				if owner[col] < 0 || try(owner[col], seen) {
					owner[col] = row
					return true
				}
			}
		}
		return false
	}

	for row := range n {
		try(row, make([]bool, n))
	}
	return owner
}

func randomZeros(rng *rand.Rand, n int, p float64) [][]bool {
	zero := make([][]bool, n)
	for i := range zero {
		zero[i] = make([]bool, n)
		for j := range zero[i] {
			zero[i][j] = rng.Float64() < p
		}
	}
	return zero
}

func TestAugmentingMatchFollowsRecursiveOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	for range 200 {
		zero := randomZeros(rng, rng.Intn(9)+1, rng.Float64())

		owner, err := augmentingMatch(zero)

		require.NoError(t, err)
		assert.Equal(t, recursiveMatch(zero), owner)
	}
}

func TestAugmentingMatchOnFullMatrix(t *testing.T) {
	zero := [][]bool{
		{true, true, true},
		{true, true, true},
		{true, true, true},
	}

	owner, err := augmentingMatch(zero)

	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, owner)
}

func TestMatchersAgreeOnCardinality(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	for range 100 {
		//** Arrange
		zero := randomZeros(rng, rng.Intn(9)+1, rng.Float64())

		//** Act
		augmenting, err := augmentingMatch(zero)
		require.NoError(t, err)
		hopcroftKarp, err := hopcroftKarpMatch(zero)
		require.NoError(t, err)

		//** Assert
		assert.Equal(t, matchedCount(augmenting), matchedCount(hopcroftKarp))
		for col, row := range hopcroftKarp {
			if row >= 0 {
				assert.True(t, zero[row][col])
			}
		}
	}
}

func TestKoenigMarksCoverEveryZero(t *testing.T) {
	rng := rand.New(rand.NewSource(37))
	for range 100 {
		zero := randomZeros(rng, rng.Intn(9)+1, rng.Float64()*0.5)
		owner, err := augmentingMatch(zero)
		require.NoError(t, err)

		rowMarked, colMarked := koenigMarks(zero, owner)

		coverSize := 0
		for i := range zero {
			if !rowMarked[i] {
				coverSize++
			}
			if colMarked[i] {
				coverSize++
			}
			for j := range zero[i] {
				if zero[i][j] {
					assert.True(t, !rowMarked[i] || colMarked[j], "zero cell (%d, %d) is uncovered", i, j)
				}
			}
		}
		assert.Equal(t, matchedCount(owner), coverSize)
	}
}
