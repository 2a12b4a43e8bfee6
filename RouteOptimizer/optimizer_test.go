package RouteOptimizer_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SmartRoute/RouteOptimizer"
)

func TestOptimizeEmptyInput(t *testing.T) {
	_, err := RouteOptimizer.Optimize(context.Background(), nil, RouteOptimizer.Options{})
	require.ErrorIs(t, err, RouteOptimizer.ErrEmptyInput)
	assert.Equal(t, "EmptyInput", RouteOptimizer.ErrorKind(err))
}

func TestOptimizeInvalidLatitude(t *testing.T) {
	points := []RouteOptimizer.Point{pune, {Name: "Nowhere", Lat: 95, Lon: 10}}

	_, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{})
	require.ErrorIs(t, err, RouteOptimizer.ErrInvalidCoordinate)
	assert.Equal(t, "InvalidCoordinate", RouteOptimizer.ErrorKind(err))

	var coordErr *RouteOptimizer.CoordinateError
	require.True(t, errors.As(err, &coordErr))
	assert.Equal(t, 1, coordErr.Index)
	assert.Equal(t, "Nowhere", coordErr.Name)
}

func TestOptimizeRejectsNonFiniteCoordinates(t *testing.T) {
	cases := map[string]RouteOptimizer.Point{
		"nan latitude":     {Name: "x", Lat: math.NaN(), Lon: 0},
		"inf longitude":    {Name: "x", Lat: 0, Lon: math.Inf(1)},
		"longitude 180.5":  {Name: "x", Lat: 0, Lon: 180.5},
		"latitude -90.001": {Name: "x", Lat: -90.001, Lon: 0},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := RouteOptimizer.Optimize(context.Background(), []RouteOptimizer.Point{p}, RouteOptimizer.Options{})
			assert.ErrorIs(t, err, RouteOptimizer.ErrInvalidCoordinate)
		})
	}
}

func TestOptimizeSinglePoint(t *testing.T) {
	for _, closed := range []bool{false, true} {
		res, err := RouteOptimizer.Optimize(context.Background(), []RouteOptimizer.Point{pune}, RouteOptimizer.Options{Closed: closed})
		require.NoError(t, err)
		assert.Equal(t, []string{"Pune"}, res.Order)
		assert.Zero(t, res.TotalDistance)
		assert.Equal(t, RouteOptimizer.StatusOK, res.Status)
	}
}

func TestOptimizeTwoPoints(t *testing.T) {
	d, err := RouteOptimizer.Haversine(pune, mumbai)
	require.NoError(t, err)

	open, err := RouteOptimizer.Optimize(context.Background(), []RouteOptimizer.Point{pune, mumbai}, RouteOptimizer.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pune", "Mumbai"}, open.Order)
	assert.InDelta(t, d, open.TotalDistance, 1e-6)

	closed, err := RouteOptimizer.Optimize(context.Background(), []RouteOptimizer.Point{pune, mumbai}, RouteOptimizer.Options{Closed: true})
	require.NoError(t, err)
	assert.InDelta(t, 2*d, closed.TotalDistance, 1e-6)
}

func TestOptimizePuneMumbaiNashik(t *testing.T) {
	points := []RouteOptimizer.Point{pune, mumbai, nashik}

	res, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{})
	require.NoError(t, err)
	assertPermutation(t, points, res.Order)
	assert.InDelta(t, bruteForceMin(t, points, false), res.TotalDistance, 1e-6)
	assert.InDelta(t, 260.28, res.TotalDistance, 0.01)
	// the long Pune-Nashik leg is never used
	assert.Equal(t, "Mumbai", res.Order[1])

	closed, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{Closed: true})
	require.NoError(t, err)
	assert.Equal(t, "Pune", closed.Order[0])
	assert.InDelta(t, 424.67, closed.TotalDistance, 0.01)
}

func TestOptimizeReturnsPermutation(t *testing.T) {
	points := scatter(30)
	for _, algo := range []RouteOptimizer.Algorithm{
		RouteOptimizer.AlgorithmTwoOpt,
		RouteOptimizer.AlgorithmNearest,
		RouteOptimizer.AlgorithmMultiStart,
		RouteOptimizer.AlgorithmMST,
		RouteOptimizer.AlgorithmAuto,
	} {
		for _, closed := range []bool{false, true} {
			res, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{Algorithm: algo, Closed: closed})
			require.NoError(t, err, algo)
			assertPermutation(t, points, res.Order)
			assert.InDelta(t, pathCost(t, res.Points, closed), res.TotalDistance, 1e-6)
		}
	}
}

func TestOptimizeImprovementNeverWorsensConstruction(t *testing.T) {
	points := scatter(40)
	for _, algo := range []RouteOptimizer.Algorithm{
		RouteOptimizer.AlgorithmTwoOpt,
		RouteOptimizer.AlgorithmMultiStart,
		RouteOptimizer.AlgorithmMST,
	} {
		for _, closed := range []bool{false, true} {
			res, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{Algorithm: algo, Closed: closed})
			require.NoError(t, err)
			assert.LessOrEqual(t, res.TotalDistance, res.InitialDistance+1e-9, "%s closed=%v", algo, closed)
		}
	}

	nn, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{Algorithm: RouteOptimizer.AlgorithmNearest})
	require.NoError(t, err)
	improved, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{})
	require.NoError(t, err)
	assert.LessOrEqual(t, improved.TotalDistance, nn.TotalDistance+1e-9)
	assert.Equal(t, nn.TotalDistance, improved.InitialDistance)
}

func TestOptimizeIsDeterministic(t *testing.T) {
	points := scatter(35)
	first, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestOptimizeDoesNotMutateInput(t *testing.T) {
	points := scatter(20)
	snapshot := append([]RouteOptimizer.Point(nil), points...)

	_, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{Closed: true})
	require.NoError(t, err)
	assert.Equal(t, snapshot, points)
}

func TestOptimizeReversedInputHasEqualCost(t *testing.T) {
	triples := [][]RouteOptimizer.Point{
		{pune, mumbai, nashik},
		{
			{Name: "A", Lat: 12.97, Lon: 77.59},
			{Name: "B", Lat: 13.08, Lon: 80.27},
			{Name: "C", Lat: 17.38, Lon: 78.48},
		},
		{
			{Name: "A", Lat: 0, Lon: 0},
			{Name: "B", Lat: 0.2, Lon: 3},
			{Name: "C", Lat: 0, Lon: 1},
		},
	}
	for _, abc := range triples {
		cba := []RouteOptimizer.Point{abc[2], abc[1], abc[0]}
		for _, closed := range []bool{false, true} {
			forward, err := RouteOptimizer.Optimize(context.Background(), abc, RouteOptimizer.Options{Closed: closed})
			require.NoError(t, err)
			backward, err := RouteOptimizer.Optimize(context.Background(), cba, RouteOptimizer.Options{Closed: closed})
			require.NoError(t, err)
			assert.InDelta(t, forward.TotalDistance, backward.TotalDistance, 1e-6)
		}
	}
}

func TestOptimizeNearCollinearFollowsTheLine(t *testing.T) {
	a := RouteOptimizer.Point{Name: "A", Lat: 10.0, Lon: 10.0}
	b := RouteOptimizer.Point{Name: "B", Lat: 10.0001, Lon: 10.4}
	c := RouteOptimizer.Point{Name: "C", Lat: 10.0, Lon: 11.0}

	res, err := RouteOptimizer.Optimize(context.Background(), []RouteOptimizer.Point{b, a, c}, RouteOptimizer.Options{})
	require.NoError(t, err)
	assert.Equal(t, "B", res.Order[1])
	assert.ElementsMatch(t, []string{"A", "C"}, []string{res.Order[0], res.Order[2]})
}

func TestOptimizeClosedRoutesStartAtFirstPoint(t *testing.T) {
	points := scatter(8)
	for _, algo := range RouteOptimizer.Algorithms {
		res, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{Algorithm: algo, Closed: true})
		require.NoError(t, err, algo)
		assert.Equal(t, points[0].Name, res.Order[0], algo)
	}
}

func TestOptimizeDuplicateNames(t *testing.T) {
	dup := RouteOptimizer.Point{Name: "Pune", Lat: 18.6, Lon: 73.9}
	points := []RouteOptimizer.Point{pune, mumbai, dup}

	_, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{})
	require.ErrorIs(t, err, RouteOptimizer.ErrDuplicateName)

	res, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{Duplicates: RouteOptimizer.DuplicateDisambiguate})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Pune", "Mumbai", "Pune #3"}, res.Order)
}

func TestOptimizeUnsupportedAlgorithm(t *testing.T) {
	_, err := RouteOptimizer.Optimize(context.Background(), scatter(4), RouteOptimizer.Options{Algorithm: "genetic"})
	require.ErrorIs(t, err, RouteOptimizer.ErrUnsupportedAlgorithm)
	assert.Equal(t, "UnsupportedAlgorithm", RouteOptimizer.ErrorKind(err))
}

func TestOptimizeExactMatchesBruteForce(t *testing.T) {
	points := scatter(7)
	for _, closed := range []bool{false, true} {
		exact, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{Algorithm: RouteOptimizer.AlgorithmExact, Closed: closed})
		require.NoError(t, err)
		assert.InDelta(t, bruteForceMin(t, points, closed), exact.TotalDistance, 1e-6)

		heuristic, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{Closed: closed})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, heuristic.TotalDistance, exact.TotalDistance-1e-9)
	}
}

func TestOptimizeExactRejectsLargeInputs(t *testing.T) {
	_, err := RouteOptimizer.Optimize(context.Background(), scatter(12), RouteOptimizer.Options{Algorithm: RouteOptimizer.AlgorithmExact})
	require.ErrorIs(t, err, RouteOptimizer.ErrTooManyPoints)
}

func TestOptimizeAutoPicksExactForSmallInputs(t *testing.T) {
	small, err := RouteOptimizer.Optimize(context.Background(), scatter(6), RouteOptimizer.Options{Algorithm: RouteOptimizer.AlgorithmAuto})
	require.NoError(t, err)
	assert.Equal(t, RouteOptimizer.AlgorithmExact, small.Algorithm)

	large, err := RouteOptimizer.Optimize(context.Background(), scatter(15), RouteOptimizer.Options{Algorithm: RouteOptimizer.AlgorithmAuto})
	require.NoError(t, err)
	assert.Equal(t, RouteOptimizer.AlgorithmTwoOpt, large.Algorithm)
}

func TestOptimizeAutoRespectsExactLimit(t *testing.T) {
	points := scatter(7)
	res, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{
		Algorithm:  RouteOptimizer.AlgorithmAuto,
		ExactLimit: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, RouteOptimizer.AlgorithmTwoOpt, res.Algorithm)
	assertPermutation(t, points, res.Order)

	res, err = RouteOptimizer.Optimize(context.Background(), scatter(5), RouteOptimizer.Options{
		Algorithm:  RouteOptimizer.AlgorithmAuto,
		ExactLimit: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, RouteOptimizer.AlgorithmExact, res.Algorithm)
}

func TestOptimizeParallelMatrixMatchesSequential(t *testing.T) {
	points := scatter(50)
	seq, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{Workers: 1})
	require.NoError(t, err)
	par, err := RouteOptimizer.Optimize(context.Background(), points, RouteOptimizer.Options{Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}

func TestOptimizeHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RouteOptimizer.Optimize(ctx, scatter(10), RouteOptimizer.Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "Canceled", RouteOptimizer.ErrorKind(err))
}
