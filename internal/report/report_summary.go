package report

import (
	"math"
	"sort"
)

type Bucket struct {
	Key        string `json:"key"`
	Count      int64  `json:"count"`
	Percentage int    `json:"percentage"`
}

// Summary is computed over the whole filtered set, not the current page.
type Summary struct {
	Total      int64              `json:"total"`
	Statuses   []Bucket           `json:"statuses"`
	Categories []Bucket           `json:"categories,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// buckets lists every key in order, including keys with no rows. Percentages
// use largest-remainder rounding so they never add up to more than 100.
func buckets(keys []string, counts map[string]int64, total int64) []Bucket {
	out := make([]Bucket, len(keys))
	for i, k := range keys {
		out[i] = Bucket{Key: k, Count: counts[k]}
	}
	if total <= 0 {
		return out
	}

	var counted int64
	remainders := make([]int64, len(out))
	assigned := 0
	for i := range out {
		scaled := out[i].Count * 100
		out[i].Percentage = int(scaled / total)
		remainders[i] = scaled % total
		assigned += out[i].Percentage
		counted += out[i].Count
	}

	// Rows whose key is not listed keep their share out of the buckets.
	target := int(math.Round(float64(counted) * 100 / float64(total)))
	if target > 100 {
		target = 100
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})

	for _, i := range order {
		if assigned >= target {
			break
		}
		if remainders[i] == 0 {
			break
		}
		out[i].Percentage++
		assigned++
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
