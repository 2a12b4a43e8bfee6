package RouteOptimizer

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// DistanceMatrix holds pairwise haversine distances. Symmetry is structural:
// only the upper triangle is stored.
type DistanceMatrix struct {
	sym *mat.SymDense
}

// NewDistanceMatrix builds the matrix for already validated points. With
// workers > 1 rows are filled concurrently; every cell is computed
// independently so the result does not depend on scheduling.
func NewDistanceMatrix(ctx context.Context, points []Point, workers int) (*DistanceMatrix, error) {
	n := len(points)
	if n == 0 {
		return nil, ErrEmptyInput
	}
	data := make([]float64, n*n)

	fillRow := func(i int) {
		for j := i + 1; j < n; j++ {
			data[i*n+j] = haversine(points[i].Lat, points[i].Lon, points[j].Lat, points[j].Lon)
		}
	}

	if workers <= 1 || n < 2*workers {
		for i := 0; i < n; i++ {
			fillRow(i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := 0; i < n; i++ {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				fillRow(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return &DistanceMatrix{sym: mat.NewSymDense(n, data)}, nil
}

// Size returns the number of points.
func (m *DistanceMatrix) Size() int {
	return m.sym.SymmetricDim()
}

// At returns the distance between points i and j.
func (m *DistanceMatrix) At(i, j int) float64 {
	return m.sym.At(i, j)
}

// TourCost sums consecutive distances of tour, plus the closing edge when closed.
func (m *DistanceMatrix) TourCost(tour []int, closed bool) float64 {
	if len(tour) < 2 {
		return 0
	}
	var total float64
	for i := 0; i+1 < len(tour); i++ {
		total += m.At(tour[i], tour[i+1])
	}
	if closed {
		total += m.At(tour[len(tour)-1], tour[0])
	}
	return round1e9(total)
}
