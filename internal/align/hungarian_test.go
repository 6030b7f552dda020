package align

import "testing"

// bruteForceMinCost exhaustively checks every permutation of a square
// cost matrix (small n only) to find the true minimum assignment cost,
// used as an oracle for the Hungarian solver.
func bruteForceMinCost(cost [][]float64) float64 {
	n := len(cost)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	best := -1.0
	var permute func(k int)
	permute = func(k int) {
		if k == n {
			total := 0.0
			for i, j := range perm {
				total += cost[i][j]
			}
			if best < 0 || total < best {
				best = total
			}
			return
		}
		for i := k; i < n; i++ {
			perm[k], perm[i] = perm[i], perm[k]
			permute(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	permute(0)
	return best
}

// TestKuhnMunkresOptimality implements spec.md §8.5: Pass 3's assignment
// must be optimal, i.e. no beneficial swap exists against the brute-force
// minimum for small square matrices.
func TestKuhnMunkresOptimality(t *testing.T) {
	matrices := [][][]float64{
		{{1, 2, 3}, {2, 4, 6}, {3, 6, 9}},
		{{0.1, 0.9, 0.4}, {0.8, 0.2, 0.5}, {0.6, 0.7, 0.3}},
		{{5, 9, 1}, {10, 3, 2}, {8, 7, 4}},
	}
	for mi, cost := range matrices {
		assign := kuhnMunkresMin(cost)
		got := 0.0
		for i, j := range assign {
			if j >= 0 {
				got += cost[i][j]
			}
		}
		want := bruteForceMinCost(cost)
		if got != want {
			t.Errorf("matrix %d: kuhnMunkresMin cost = %v, want optimal %v", mi, got, want)
		}
	}
}

// TestKuhnMunkresRectangular checks padding handles n != m without
// forcing a spurious real-to-dummy mismatch in the returned row count.
func TestKuhnMunkresRectangular(t *testing.T) {
	cost := [][]float64{
		{0.1, 0.9},
		{0.8, 0.2},
		{0.5, 0.5},
	}
	assign := kuhnMunkresMin(cost)
	if len(assign) != 3 {
		t.Fatalf("want 3 rows in assignment, got %d", len(assign))
	}
	matched := 0
	for _, j := range assign {
		if j >= 0 {
			matched++
		}
	}
	if matched != 2 {
		t.Fatalf("want 2 of 3 rows matched (min(n,m)=2), got %d", matched)
	}
}
