// Package topk selects the k smallest scores of a distance buffer.
//
// Rows are ordered by (distance, row index), a strict total order, so the
// result is deterministic even when distances tie. NaN distances order after
// every number.
package topk

import (
	"cmp"
	"math/bits"
	"math/rand/v2"
	"slices"
)

// Select returns the row indices of the k smallest scores, nearest first.
// The result has length min(k, len(scores)); k <= 0 yields an empty slice.
func Select(scores []float32, k int) []int {
	return SelectFunc(scores, k, nil)
}

// SelectFunc is like Select but only considers rows for which keep returns
// true. A nil keep considers every row.
func SelectFunc(scores []float32, k int, keep func(row int) bool) []int {
	if k <= 0 || len(scores) == 0 {
		return []int{}
	}

	rows := make([]int, 0, len(scores))
	for i := range scores {
		if keep == nil || keep(i) {
			rows = append(rows, i)
		}
	}

	compare := byScore(scores)

	if len(rows) > k {
		selectK(rows, k, compare, maxDepth(len(rows)))
		rows = rows[:k:k]
	}

	slices.SortFunc(rows, compare)
	return rows
}

// selectK reorders rows so that rows[:k] holds the k smallest elements in
// unspecified order. Requires 0 < k < len(rows). After depth partition
// rounds the remaining range is sorted instead.
func selectK(rows []int, k int, compare func(a, b int) int, depth int) {
	lo, hi := 0, len(rows)

	// rows[:lo] precede and rows[hi:] follow every element of rows[lo:hi],
	// with lo <= k <= hi.
	for hi-lo > 1 {
		if depth == 0 {
			slices.SortFunc(rows[lo:hi], compare)
			return
		}
		depth--

		p := partition(rows, lo, hi, lo+rand.IntN(hi-lo), compare)

		switch {
		case p == k || p == k-1:
			return
		case p < k:
			lo = p + 1
		default:
			hi = p
		}
	}
}

// partition moves rows[pivot] to its final position within rows[lo:hi] and
// returns that position.
func partition(rows []int, lo, hi, pivot int, compare func(a, b int) int) int {
	last := hi - 1
	rows[pivot], rows[last] = rows[last], rows[pivot]
	pv := rows[last]

	store := lo
	for i := lo; i < last; i++ {
		if compare(rows[i], pv) < 0 {
			rows[i], rows[store] = rows[store], rows[i]
			store++
		}
	}
	rows[store], rows[last] = rows[last], rows[store]
	return store
}

func maxDepth(n int) int {
	return 2 * bits.Len(uint(n))
}

func byScore(scores []float32) func(a, b int) int {
	return func(a, b int) int {
		if c := CompareDistance(scores[a], scores[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	}
}

// CompareDistance orders distances ascending with NaN after every number.
func CompareDistance(a, b float32) int {
	aNaN, bNaN := a != a, b != b
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	}
	return cmp.Compare(a, b)
}
