package RouteOptimizer

import (
	"math"
	"slices"
)

// nearestNeighbour builds a tour from start by always moving to the closest
// unvisited point. Ties go to the lowest index because the scan is ascending
// and only a strictly smaller distance replaces the candidate.
func nearestNeighbour(m *DistanceMatrix, start int) []int {
	n := m.Size()
	tour := make([]int, 0, n)
	visited := make([]bool, n)

	current := start
	tour = append(tour, current)
	visited[current] = true

	for len(tour) < n {
		next := -1
		best := math.Inf(1)
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			if d := m.At(current, j); d < best {
				best = d
				next = j
			}
		}
		tour = append(tour, next)
		visited[next] = true
		current = next
	}

	return tour
}

// mstPreorder grows a minimum spanning tree from root with Prim's algorithm
// and returns its preorder walk. Children are visited in ascending index order.
func mstPreorder(m *DistanceMatrix, root int) []int {
	n := m.Size()
	inTree := make([]bool, n)
	key := make([]float64, n)
	parent := make([]int, n)
	for i := range key {
		key[i] = math.Inf(1)
		parent[i] = -1
	}
	key[root] = 0

	children := make([][]int, n)
	for added := 0; added < n; added++ {
		u := -1
		for v := 0; v < n; v++ {
			if !inTree[v] && (u == -1 || key[v] < key[u]) {
				u = v
			}
		}
		inTree[u] = true
		if parent[u] >= 0 {
			children[parent[u]] = append(children[parent[u]], u)
		}
		for v := 0; v < n; v++ {
			if !inTree[v] {
				if d := m.At(u, v); d < key[v] {
					key[v] = d
					parent[v] = u
				}
			}
		}
	}
	for i := range children {
		slices.Sort(children[i])
	}

	tour := make([]int, 0, n)
	stack := []int{root}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		tour = append(tour, u)
		for k := len(children[u]) - 1; k >= 0; k-- {
			stack = append(stack, children[u][k])
		}
	}
	return tour
}
