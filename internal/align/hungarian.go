package align

import "math"

// kuhnMunkresMin solves the rectangular assignment problem: given an
// n x m cost matrix, find a minimum-cost matching of rows to columns
// (each row matched to at most one column and vice versa), matching
// min(n, m) pairs. Pass 3 of the aligner (spec.md §4.5.1) uses this to
// assign original sections to revised sections by 1 - similarity cost.
//
// No library in the example pack implements assignment-problem solving;
// this is a from-scratch O(n^3) Kuhn-Munkres implementation in the
// teacher's plain-function, no-dependency style, padded to a square
// matrix with a zero-cost dummy so rows/columns of different length are
// handled uniformly.
func kuhnMunkresMin(cost [][]float64) []int {
	n := len(cost)
	if n == 0 {
		return nil
	}
	m := len(cost[0])
	size := n
	if m > size {
		size = m
	}

	// Pad to a square matrix. Dummy cells cost 0 so unmatched real rows
	// or columns (when n != m) are assigned to dummies rather than
	// forcing a spurious real-to-real pairing.
	a := make([][]float64, size)
	for i := range a {
		a[i] = make([]float64, size)
		for j := range a[i] {
			if i < n && j < m {
				a[i][j] = cost[i][j]
			}
		}
	}

	const inf = math.MaxFloat64 / 2
	u := make([]float64, size+1)
	v := make([]float64, size+1)
	p := make([]int, size+1) // p[j] = row assigned to column j (1-based), 0 = none
	way := make([]int, size+1)

	for i := 1; i <= size; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, size+1)
		used := make([]bool, size+1)
		for j := range minv {
			minv[j] = inf
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1
			for j := 1; j <= size; j++ {
				if used[j] {
					continue
				}
				cur := a[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= size; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	// rowToCol[i] = assigned column, or -1 if i is a padding row or
	// assigned only to a padding column.
	rowToCol := make([]int, n)
	for i := range rowToCol {
		rowToCol[i] = -1
	}
	for j := 1; j <= size; j++ {
		i := p[j] - 1
		col := j - 1
		if i >= 0 && i < n && col < m {
			rowToCol[i] = col
		}
	}
	return rowToCol
}
