// Package agg is the aggregation layer over enriched records: grouping,
// counts, means, and shares along arbitrary facets. All orderings are
// deterministic — groups appear in first-seen source order, and rankings
// break count ties by that same order — so "peak" selections are
// reproducible run to run.
package agg

import (
	"sort"

	"minevision/domain/event"
)

// Bucket is one group key with its count and share of the subset total.
type Bucket struct {
	Key     string  `json:"key"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Bucket2 is one cell of a two-facet grouping.
type Bucket2 struct {
	Key1  string `json:"key1"`
	Key2  string `json:"key2"`
	Count int    `json:"count"`
}

// GroupCount counts records per facet value, in first-seen order. Records
// where the facet is absent are not counted. Percent is the share of the
// subset total (all records, present or not), zero when the subset is empty.
func GroupCount(records []event.EnrichedRecord, facet event.Facet) []Bucket {
	counts := make(map[string]int)
	var order []string

	for i := range records {
		key, ok := records[i].FacetValue(facet)
		if !ok {
			continue
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	total := len(records)
	buckets := make([]Bucket, 0, len(order))
	for _, key := range order {
		buckets = append(buckets, Bucket{
			Key:     key,
			Count:   counts[key],
			Percent: PercentOfTotal(counts[key], total),
		})
	}
	return buckets
}

// GroupCount2 counts records along two facets. Cells appear in first-seen
// order of the (key1, key2) pair.
func GroupCount2(records []event.EnrichedRecord, f1, f2 event.Facet) []Bucket2 {
	type pair struct{ a, b string }
	counts := make(map[pair]int)
	var order []pair

	for i := range records {
		k1, ok1 := records[i].FacetValue(f1)
		k2, ok2 := records[i].FacetValue(f2)
		if !ok1 || !ok2 {
			continue
		}
		p := pair{k1, k2}
		if _, seen := counts[p]; !seen {
			order = append(order, p)
		}
		counts[p]++
	}

	cells := make([]Bucket2, 0, len(order))
	for _, p := range order {
		cells = append(cells, Bucket2{Key1: p.a, Key2: p.b, Count: counts[p]})
	}
	return cells
}

// SortByCount orders buckets by descending count. The sort is stable, so
// equal counts keep their first-seen order.
func SortByCount(buckets []Bucket) []Bucket {
	out := make([]Bucket, len(buckets))
	copy(out, buckets)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// TopN returns the n largest groups of a facet, descending by count,
// first-seen order breaking ties.
func TopN(records []event.EnrichedRecord, facet event.Facet, n int) []Bucket {
	ranked := SortByCount(GroupCount(records, facet))
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Peak returns the group with the maximum count, ties broken by first-seen
// order. ok is false when no record carries the facet.
func Peak(records []event.EnrichedRecord, facet event.Facet) (Bucket, bool) {
	ranked := SortByCount(GroupCount(records, facet))
	if len(ranked) == 0 {
		return Bucket{}, false
	}
	return ranked[0], true
}

// MeanDuration averages duration over records where it is present. ok is
// false when no record has a duration.
func MeanDuration(records []event.EnrichedRecord) (float64, bool) {
	var sum float64
	var n int
	for i := range records {
		if records[i].DurationSeconds != nil {
			sum += *records[i].DurationSeconds
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// UniqueCount counts distinct present values of a facet.
func UniqueCount(records []event.EnrichedRecord, facet event.Facet) int {
	seen := make(map[string]bool)
	for i := range records {
		if key, ok := records[i].FacetValue(facet); ok {
			seen[key] = true
		}
	}
	return len(seen)
}

// CountWhere counts records matching a predicate.
func CountWhere(records []event.EnrichedRecord, match func(*event.EnrichedRecord) bool) int {
	var n int
	for i := range records {
		if match(&records[i]) {
			n++
		}
	}
	return n
}

// PercentOfTotal is count/total as a percentage, with the zero-denominator
// case returning 0 rather than NaN.
func PercentOfTotal(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
