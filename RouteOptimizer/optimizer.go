package RouteOptimizer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("SmartRoute/RouteOptimizer")

// Optimize orders points to approximate the shortest route through all of
// them. The input slice is never modified and the same input always yields
// the same Result.
func Optimize(ctx context.Context, points []Point, opts Options) (Result, error) {
	opts = opts.withDefaults()

	ctx, span := tracer.Start(ctx, "RouteOptimizer.Optimize", trace.WithAttributes(
		attribute.Int("route.points", len(points)),
		attribute.Bool("route.closed", opts.Closed),
		attribute.String("route.algorithm", string(opts.Algorithm)),
	))
	defer span.End()

	res, err := optimize(ctx, points, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, ErrorKind(err))
		return Result{}, err
	}
	span.SetAttributes(
		attribute.Float64("route.total_distance_km", res.TotalDistance),
		attribute.Int("route.iterations", res.Iterations),
	)
	return res, nil
}

func optimize(ctx context.Context, points []Point, opts Options) (Result, error) {
	n := len(points)
	if n == 0 {
		return Result{}, ErrEmptyInput
	}
	if err := validatePoints(points); err != nil {
		return Result{}, err
	}
	names, err := resolveNames(points, opts.Duplicates)
	if err != nil {
		return Result{}, err
	}

	algo, err := resolveAlgorithm(opts.Algorithm, n, opts.ExactLimit)
	if err != nil {
		return Result{}, err
	}
	if algo == AlgorithmExact && n > opts.ExactLimit {
		return Result{}, fmt.Errorf("%w: %d points, limit %d", ErrTooManyPoints, n, opts.ExactLimit)
	}

	m, err := NewDistanceMatrix(ctx, points, opts.Workers)
	if err != nil {
		return Result{}, err
	}

	var (
		tour    []int
		initial float64
		stats   = twoOptResult{converged: true}
	)
	maxMoves := opts.IterationFactor * n * n

	switch {
	case n <= 2:
		tour = identity(n)
		initial = m.TourCost(tour, opts.Closed)
	case algo == AlgorithmNearest:
		tour = nearestNeighbour(m, 0)
		initial = m.TourCost(tour, opts.Closed)
	case algo == AlgorithmTwoOpt:
		tour = nearestNeighbour(m, 0)
		initial = m.TourCost(tour, opts.Closed)
		if stats, err = twoOpt(ctx, m, tour, opts.Closed, maxMoves, opts.Eps); err != nil {
			return Result{}, err
		}
	case algo == AlgorithmMST:
		tour = mstPreorder(m, 0)
		initial = m.TourCost(tour, opts.Closed)
		if stats, err = twoOpt(ctx, m, tour, opts.Closed, maxMoves, opts.Eps); err != nil {
			return Result{}, err
		}
	case algo == AlgorithmMultiStart:
		if tour, initial, stats, err = multiStart(ctx, m, opts.Closed, maxMoves, opts.Eps); err != nil {
			return Result{}, err
		}
	case algo == AlgorithmExact:
		if tour, err = exactTour(ctx, m, opts.Closed, opts.Eps); err != nil {
			return Result{}, err
		}
		initial = m.TourCost(tour, opts.Closed)
	}

	res := Result{
		Order:           make([]string, n),
		Points:          make([]Point, n),
		TotalDistance:   m.TourCost(tour, opts.Closed),
		InitialDistance: initial,
		Iterations:      stats.moves,
		Converged:       stats.converged,
		Closed:          opts.Closed,
		Algorithm:       algo,
		Status:          StatusOK,
	}
	for k, idx := range tour {
		res.Order[k] = names[idx]
		res.Points[k] = Point{Name: names[idx], Lat: points[idx].Lat, Lon: points[idx].Lon}
	}
	return res, nil
}

// multiStart runs nearest neighbour plus 2-opt from every start and keeps the
// cheapest tour. Ties keep the lowest start index.
func multiStart(ctx context.Context, m *DistanceMatrix, closed bool, maxMoves int, eps float64) ([]int, float64, twoOptResult, error) {
	var (
		bestTour    []int
		bestCost    float64
		bestInitial float64
		bestStats   twoOptResult
	)
	for s := 0; s < m.Size(); s++ {
		tour := nearestNeighbour(m, s)
		initial := m.TourCost(tour, closed)
		stats, err := twoOpt(ctx, m, tour, closed, maxMoves, eps)
		if err != nil {
			return nil, 0, twoOptResult{}, err
		}
		cost := m.TourCost(tour, closed)
		if bestTour == nil || cost < bestCost-eps {
			bestTour, bestCost, bestInitial, bestStats = tour, cost, initial, stats
		}
	}
	if closed {
		bestTour = rotateTo(bestTour, 0)
	}
	return bestTour, bestInitial, bestStats, nil
}

// resolveAlgorithm maps AlgorithmAuto to a concrete algorithm. Auto never
// picks exhaustive search above exactLimit.
func resolveAlgorithm(a Algorithm, n, exactLimit int) (Algorithm, error) {
	switch a {
	case AlgorithmTwoOpt, AlgorithmNearest, AlgorithmMultiStart, AlgorithmMST, AlgorithmExact:
		return a, nil
	case AlgorithmAuto:
		if n <= min(autoExactThreshold, exactLimit) {
			return AlgorithmExact, nil
		}
		return AlgorithmTwoOpt, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, a)
	}
}

func validatePoints(points []Point) error {
	for i, p := range points {
		if ValidateCoordinate(p.Lat, p.Lon) != nil {
			return &CoordinateError{Index: i, Name: p.Name, Lat: p.Lat, Lon: p.Lon}
		}
	}
	return nil
}

// resolveNames returns the name reported for every input index.
func resolveNames(points []Point, policy DuplicatePolicy) ([]string, error) {
	names := make([]string, len(points))
	seen := make(map[string]int, len(points))
	for i, p := range points {
		names[i] = p.Name
		seen[p.Name]++
	}
	if len(seen) == len(points) {
		return names, nil
	}
	if policy != DuplicateDisambiguate {
		for i, p := range points {
			if seen[p.Name] > 1 {
				return nil, fmt.Errorf("%w: %q at position %d", ErrDuplicateName, p.Name, i+1)
			}
		}
	}

	first := make(map[string]bool, len(points))
	for i, p := range points {
		if !first[p.Name] {
			first[p.Name] = true
			continue
		}
		renamed := fmt.Sprintf("%s #%d", p.Name, i+1)
		if _, clash := seen[renamed]; clash {
			return nil, fmt.Errorf("%w: %q clashes with an existing name", ErrDuplicateName, renamed)
		}
		seen[renamed] = 1
		names[i] = renamed
	}
	return names, nil
}

func identity(n int) []int {
	tour := make([]int, n)
	for i := range tour {
		tour[i] = i
	}
	return tour
}
