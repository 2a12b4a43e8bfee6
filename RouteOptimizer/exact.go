package RouteOptimizer

import (
	"context"
	"math"
)

// exactTour enumerates orders depth first in ascending index order and keeps
// the first order whose cost beats the incumbent by more than eps. Closed
// tours fix index 0 as the start; open paths may start anywhere.
func exactTour(ctx context.Context, m *DistanceMatrix, closed bool, eps float64) ([]int, error) {
	n := m.Size()
	best := math.Inf(1)
	var bestTour []int

	tour := make([]int, 0, n)
	used := make([]bool, n)
	steps := 0

	var search func(partial float64) error
	search = func(partial float64) error {
		if partial >= best-eps {
			return nil
		}
		if len(tour) == n {
			total := partial
			if closed {
				total += m.At(tour[n-1], tour[0])
			}
			if total < best-eps {
				best = total
				bestTour = append(bestTour[:0], tour...)
			}
			return nil
		}

		steps++
		if steps%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		for v := 0; v < n; v++ {
			if used[v] {
				continue
			}
			step := 0.0
			if len(tour) > 0 {
				step = m.At(tour[len(tour)-1], v)
			}
			used[v] = true
			tour = append(tour, v)
			if err := search(partial + step); err != nil {
				return err
			}
			tour = tour[:len(tour)-1]
			used[v] = false
		}
		return nil
	}

	if closed {
		used[0] = true
		tour = append(tour, 0)
	}
	if err := search(0); err != nil {
		return nil, err
	}
	return bestTour, nil
}
