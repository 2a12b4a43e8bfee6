package RouteOptimizer_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"SmartRoute/RouteOptimizer"
)

var (
	pune   = RouteOptimizer.Point{Name: "Pune", Lat: 18.5204, Lon: 73.8567}
	mumbai = RouteOptimizer.Point{Name: "Mumbai", Lat: 19.0760, Lon: 72.8777}
	nashik = RouteOptimizer.Point{Name: "Nashik", Lat: 19.9975, Lon: 73.7898}
)

// scatter returns n reproducible points spread over a small region around Pune.
func scatter(n int) []RouteOptimizer.Point {
	points := make([]RouteOptimizer.Point, n)
	state := uint32(2463534242)
	next := func() float64 {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		return float64(state%10000) / 10000
	}
	for i := range points {
		points[i] = RouteOptimizer.Point{
			Name: fmt.Sprintf("P%02d", i),
			Lat:  18.0 + next()*2,
			Lon:  73.0 + next()*2,
		}
	}
	return points
}

// pathCost recomputes a route length from coordinates.
func pathCost(t *testing.T, route []RouteOptimizer.Point, closed bool) float64 {
	t.Helper()
	var total float64
	for i := 0; i+1 < len(route); i++ {
		d, err := RouteOptimizer.Haversine(route[i], route[i+1])
		require.NoError(t, err)
		total += d
	}
	if closed && len(route) > 1 {
		d, err := RouteOptimizer.Haversine(route[len(route)-1], route[0])
		require.NoError(t, err)
		total += d
	}
	return total
}

// bruteForceMin enumerates every order of points.
func bruteForceMin(t *testing.T, points []RouteOptimizer.Point, closed bool) float64 {
	t.Helper()
	best := -1.0
	perm := make([]RouteOptimizer.Point, len(points))
	used := make([]bool, len(points))
	var walk func(k int)
	walk = func(k int) {
		if k == len(points) {
			if c := pathCost(t, perm, closed); best < 0 || c < best {
				best = c
			}
			return
		}
		for i := range points {
			if used[i] {
				continue
			}
			used[i] = true
			perm[k] = points[i]
			walk(k + 1)
			used[i] = false
		}
	}
	walk(0)
	return best
}

func assertPermutation(t *testing.T, points []RouteOptimizer.Point, order []string) {
	t.Helper()
	require.Len(t, order, len(points))
	want := make(map[string]int, len(points))
	for _, p := range points {
		want[p.Name]++
	}
	for _, name := range order {
		want[name]--
	}
	for name, left := range want {
		require.Zerof(t, left, "name %q appears a wrong number of times", name)
	}
}
