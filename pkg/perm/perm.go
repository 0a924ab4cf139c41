// Package perm enumerates the index sets used to assign requested container
// names to concrete ship slots.
//
// When an unload request names a container that appears several times in
// the manifest, every choice of which copies to unload is a distinct search
// root. [Combinations] produces the choices for one name and [Product]
// combines the choices across names.
package perm

import "slices"

// Seq returns a slice containing the sequence [0, 1, 2, ..., n-1].
//
// For n <= 0, Seq returns an empty slice.
func Seq(n int) []int {
	result := make([]int, max(n, 0))
	for i := range result {
		result[i] = i
	}
	return result
}

// Binomial returns n choose k, or 0 when k is outside [0, n].
// The result saturates at the largest int instead of overflowing.
func Binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	k = min(k, n-k)
	result := 1
	for i := 1; i <= k; i++ {
		next := result * (n - k + i)
		if next/(n-k+i) != result {
			return int(^uint(0) >> 1)
		}
		result = next / i
	}
	return result
}

// Combinations returns the k-element subsets of [0, n) in lexicographic
// order, each as an ascending slice.
//
// If limit > 0, Combinations returns at most limit subsets.
// Each returned slice is a separate allocation.
//
// Edge cases:
//   - k = 0: returns [[]] (one empty subset)
//   - k > n or k < 0: returns nil
func Combinations(n, k, limit int) [][]int {
	if k < 0 || k > n {
		return nil
	}
	if k == 0 {
		return [][]int{{}}
	}

	idx := Seq(k)
	var result [][]int
	for {
		result = append(result, slices.Clone(idx))
		if limit > 0 && len(result) >= limit {
			return result
		}

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return result
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// Product returns the cartesian product of the index ranges [0, sizes[i]),
// with the last position varying fastest.
//
// If limit > 0, Product returns at most limit tuples. Any size of zero makes
// the product empty; no sizes at all yields one empty tuple.
func Product(sizes []int, limit int) [][]int {
	for _, s := range sizes {
		if s <= 0 {
			return nil
		}
	}

	cur := make([]int, len(sizes))
	var result [][]int
	for {
		result = append(result, slices.Clone(cur))
		if limit > 0 && len(result) >= limit {
			return result
		}

		i := len(sizes) - 1
		for i >= 0 {
			cur[i]++
			if cur[i] < sizes[i] {
				break
			}
			cur[i] = 0
			i--
		}
		if i < 0 {
			return result
		}
	}
}

// Count returns the number of tuples Product would return without a limit,
// saturating at the largest int.
func Count(sizes []int) int {
	const maxInt = int(^uint(0) >> 1)
	total := 1
	for _, s := range sizes {
		if s <= 0 {
			return 0
		}
		if total > maxInt/s {
			return maxInt
		}
		total *= s
	}
	return total
}
