package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankerFixture() []PathStats {
	return []PathStats{
		{URL: "/c", TimeSum: 3},
		{URL: "/a", TimeSum: 10},
		{URL: "/d", TimeSum: 1},
		{URL: "/b", TimeSum: 7},
		{URL: "/e", TimeSum: 7},
	}
}

func urls(stats []PathStats) []string {
	out := make([]string, 0, len(stats))
	for _, s := range stats {
		out = append(out, s.URL)
	}
	return out
}

func TestTopN(t *testing.T) {
	t.Run("Fits within n", func(t *testing.T) {
		stats := rankerFixture()
		assert.Equal(t, stats, TopN(stats, 5))
		assert.Equal(t, stats, TopN(stats, 100))
	})

	t.Run("Keeps largest ascending", func(t *testing.T) {
		top := TopN(rankerFixture(), 3)
		assert.Equal(t, []string{"/b", "/e", "/a"}, urls(top))
	})

	t.Run("Zero and negative", func(t *testing.T) {
		assert.Empty(t, TopN(rankerFixture(), 0))
		assert.Empty(t, TopN(rankerFixture(), -1))
	})

	t.Run("Does not reorder input", func(t *testing.T) {
		stats := rankerFixture()
		TopN(stats, 2)
		assert.Equal(t, rankerFixture(), stats)
	})
}

func TestTopN_LengthAndIdempotence(t *testing.T) {
	stats := rankerFixture()
	for n := 0; n <= 7; n++ {
		once := TopN(stats, n)
		require.Len(t, once, min(n, len(stats)))
		assert.Equal(t, once, TopN(once, n))
	}
}

func TestSortByTimeSumDesc(t *testing.T) {
	sorted := SortByTimeSumDesc(rankerFixture())
	assert.Equal(t, []string{"/a", "/b", "/e", "/c", "/d"}, urls(sorted))
}
