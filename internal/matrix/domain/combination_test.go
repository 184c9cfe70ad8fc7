package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombinations(t *testing.T) {
	sel := Selection{
		Order: []int64{12, 13},
		Terms: map[int64][]int64{
			12: {101, 102},
			13: {103},
		},
	}

	keys, err := sel.Combinations(1000)
	require.NoError(t, err)
	assert.Equal(t, []string{"12:101-13:103", "12:102-13:103"}, keys)

	// Stable ordering across repeated calls.
	again, err := sel.Combinations(1000)
	require.NoError(t, err)
	assert.Equal(t, keys, again)
}

func TestCombinationsNestedOrder(t *testing.T) {
	sel := Selection{
		Order: []int64{1, 2},
		Terms: map[int64][]int64{
			1: {10, 20},
			2: {30, 40},
		},
	}

	keys, err := sel.Combinations(1000)
	require.NoError(t, err)
	// First attribute is the outer loop, last the innermost.
	assert.Equal(t, []string{
		"1:10-2:30",
		"1:10-2:40",
		"1:20-2:30",
		"1:20-2:40",
	}, keys)
}

func TestCombinationsCount(t *testing.T) {
	sel := Selection{
		Order: []int64{1, 2, 3},
		Terms: map[int64][]int64{
			1: {10, 11, 12},
			2: {20, 21},
			3: {30, 31, 32, 33},
		},
	}

	keys, err := sel.Combinations(1000)
	require.NoError(t, err)
	assert.Len(t, keys, 3*2*4)

	unique := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		unique[k] = struct{}{}
	}
	assert.Len(t, unique, len(keys))
}

func TestCombinationsZeroAttributes(t *testing.T) {
	sel := Selection{Terms: map[int64][]int64{}}

	keys, err := sel.Combinations(1000)
	require.NoError(t, err)
	assert.Equal(t, []string{""}, keys)
}

func TestCombinationsZeroTermSetYieldsNothing(t *testing.T) {
	sel := Selection{
		Order: []int64{1, 2},
		Terms: map[int64][]int64{
			1: {10},
			2: {},
		},
	}

	keys, err := sel.Combinations(1000)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCombinationsCapRefusedBeforeExpansion(t *testing.T) {
	sel := Selection{
		Order: []int64{1, 2, 3},
		Terms: map[int64][]int64{
			1: {10, 11, 12, 13, 14, 15, 16, 17, 18, 19},
			2: {20, 21, 22, 23, 24, 25, 26, 27, 28, 29},
			3: {30, 31, 32, 33, 34, 35, 36, 37, 38, 39},
		},
	}

	_, err := sel.Combinations(999)
	assert.ErrorIs(t, err, ErrCombinationCap)

	keys, err := sel.Combinations(1000)
	require.NoError(t, err)
	assert.Len(t, keys, 1000)
}

func TestParseCombinationKey(t *testing.T) {
	pairs, err := ParseCombinationKey("12:101-13:103")
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, int64(12), pairs[0].AttributeID)
	assert.Equal(t, []int64{101}, pairs[0].TermIDs)
	assert.Equal(t, int64(13), pairs[1].AttributeID)

	pairs, err = ParseCombinationKey("")
	require.NoError(t, err)
	assert.Empty(t, pairs)

	_, err = ParseCombinationKey("12-13")
	assert.Error(t, err)
}

func TestUnion(t *testing.T) {
	base := Selection{
		Order: []int64{12, 13},
		Terms: map[int64][]int64{
			12: {101, 102},
			13: {103},
		},
	}
	finishing := Selection{
		Order: []int64{13, 14},
		Terms: map[int64][]int64{
			13: {103, 107},
			14: {104},
		},
	}

	merged := Union(base, finishing)
	assert.Equal(t, []int64{12, 13, 14}, merged.Order)
	assert.Equal(t, []int64{101, 102}, merged.Terms[12])
	assert.ElementsMatch(t, []int64{103, 107}, merged.Terms[13])
	assert.Equal(t, []int64{104}, merged.Terms[14])
}

func TestUnionIdempotent(t *testing.T) {
	base := Selection{
		Order: []int64{1},
		Terms: map[int64][]int64{1: {10, 11}},
	}
	finishing := Selection{
		Order: []int64{1, 2},
		Terms: map[int64][]int64{1: {11, 12}, 2: {20}},
	}

	once := Union(base, finishing)
	twice := Union(once, finishing)
	assert.Equal(t, once, twice)
}

func TestUnionDoesNotMutateInputs(t *testing.T) {
	base := Selection{
		Order: []int64{1},
		Terms: map[int64][]int64{1: {10}},
	}
	finishing := Selection{
		Order: []int64{1},
		Terms: map[int64][]int64{1: {11}},
	}

	_ = Union(base, finishing)
	assert.Equal(t, []int64{10}, base.Terms[1])
	assert.Equal(t, []int64{11}, finishing.Terms[1])
}
