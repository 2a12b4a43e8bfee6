package RouteOptimizer

import "context"

// twoOptResult reports how the improvement phase ended.
type twoOptResult struct {
	moves     int
	converged bool
}

// twoOpt improves tour in place with first-improvement segment reversals.
//
// Every pass scans (i, j) pairs in ascending order and applies the first
// reversal of tour[i..j] that shortens the route by more than eps, then starts
// a new pass. The search ends when a whole pass finds nothing or after
// maxMoves accepted moves.
//
// Closed tours keep tour[0] fixed and include the closing edge. Open tours
// have free endpoints, so prefix and suffix reversals are candidates too.
func twoOpt(ctx context.Context, m *DistanceMatrix, tour []int, closed bool, maxMoves int, eps float64) (twoOptResult, error) {
	n := len(tour)
	res := twoOptResult{converged: true}
	if n < 3 {
		return res, nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if res.moves >= maxMoves {
			res.converged = false
			return res, nil
		}

		i, j, ok := firstImprovingMove(m, tour, closed, eps)
		if !ok {
			return res, nil
		}
		reverse(tour, i, j)
		res.moves++
	}
}

func firstImprovingMove(m *DistanceMatrix, tour []int, closed bool, eps float64) (int, int, bool) {
	n := len(tour)
	if closed {
		for i := 1; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				a, b := tour[i-1], tour[i]
				c, d := tour[j], tour[(j+1)%n]
				delta := (m.At(a, c) + m.At(b, d)) - (m.At(a, b) + m.At(c, d))
				if delta < -eps {
					return i, j, true
				}
			}
		}
		return 0, 0, false
	}

	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			delta := 0.0
			if i > 0 {
				delta += m.At(tour[i-1], tour[j]) - m.At(tour[i-1], tour[i])
			}
			if j < n-1 {
				delta += m.At(tour[i], tour[j+1]) - m.At(tour[j], tour[j+1])
			}
			if delta < -eps {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// reverse flips tour[i..j] inclusive.
func reverse(tour []int, i, j int) {
	for ; i < j; i, j = i+1, j-1 {
		tour[i], tour[j] = tour[j], tour[i]
	}
}

// rotateTo shifts a closed tour so that it starts at vertex v.
func rotateTo(tour []int, v int) []int {
	for k, u := range tour {
		if u == v {
			out := make([]int, 0, len(tour))
			out = append(out, tour[k:]...)
			return append(out, tour[:k]...)
		}
	}
	return tour
}
