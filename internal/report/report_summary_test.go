package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sumPercentages(bs []Bucket) int {
	total := 0
	for _, b := range bs {
		total += b.Percentage
	}
	return total
}

func TestBuckets_EmptySet(t *testing.T) {
	got := buckets([]string{"pending", "approved"}, map[string]int64{}, 0)

	assert.Equal(t, []Bucket{{Key: "pending"}, {Key: "approved"}}, got)
}

func TestBuckets_ThirdsNeverExceedHundred(t *testing.T) {
	got := buckets([]string{"a", "b", "c"}, map[string]int64{"a": 1, "b": 1, "c": 1}, 3)

	assert.Equal(t, 100, sumPercentages(got))
	for _, b := range got {
		assert.GreaterOrEqual(t, b.Percentage, 33)
		assert.LessOrEqual(t, b.Percentage, 34)
	}
}

func TestBuckets_NearestRoundingWouldOverflow(t *testing.T) {
	// 1/6 = 16.67%, rounding each bucket to nearest gives 17*6 = 102.
	counts := map[string]int64{"a": 1, "b": 1, "c": 1, "d": 1, "e": 1, "f": 1}
	got := buckets([]string{"a", "b", "c", "d", "e", "f"}, counts, 6)

	assert.Equal(t, 100, sumPercentages(got))
}

func TestBuckets_ExactShares(t *testing.T) {
	got := buckets([]string{"pending", "approved", "rejected"}, map[string]int64{"pending": 2, "approved": 6, "rejected": 2}, 10)

	assert.Equal(t, []Bucket{
		{Key: "pending", Count: 2, Percentage: 20},
		{Key: "approved", Count: 6, Percentage: 60},
		{Key: "rejected", Count: 2, Percentage: 20},
	}, got)
}

func TestBuckets_LargestRemainderWins(t *testing.T) {
	// 2/7 = 28.57, 5/7 = 71.43
	got := buckets([]string{"official", "personal"}, map[string]int64{"official": 2, "personal": 5}, 7)

	assert.Equal(t, 29, got[0].Percentage)
	assert.Equal(t, 71, got[1].Percentage)
}

func TestBuckets_UnlistedKeysKeepTheirShare(t *testing.T) {
	got := buckets([]string{"male", "female"}, map[string]int64{"male": 1, "female": 1, "": 2}, 4)

	assert.Equal(t, 25, got[0].Percentage)
	assert.Equal(t, 25, got[1].Percentage)
	assert.Equal(t, 50, sumPercentages(got))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 7.33, round2(7.3333))
	assert.Equal(t, 0.0, round2(0))
}
