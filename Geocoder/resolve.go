package Geocoder

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"SmartRoute/RouteOptimizer"
)

// ResolvePoints turns names into optimizer points. Names present in known
// keep their [lat, lon]; the rest are geocoded with at most concurrency
// lookups in flight. The result keeps the order of names.
func ResolvePoints(ctx context.Context, g Geocoder, names []string, known map[string][2]float64, concurrency int) ([]RouteOptimizer.Point, error) {
	points := make([]RouteOptimizer.Point, len(names))
	if concurrency <= 0 {
		concurrency = 1
	}

	if g == nil {
		for _, name := range names {
			if _, ok := known[name]; !ok {
				return nil, fmt.Errorf("%q: %w", name, ErrMissingAPIKey)
			}
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, name := range names {
		if coords, ok := known[name]; ok {
			points[i] = RouteOptimizer.Point{Name: name, Lat: coords[0], Lon: coords[1]}
			continue
		}
		i, name := i, name
		eg.Go(func() error {
			loc, err := g.Geocode(ctx, name)
			if err != nil {
				return fmt.Errorf("%q: %w", name, err)
			}
			points[i] = RouteOptimizer.Point{Name: name, Lat: loc.Lat, Lon: loc.Lon}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}
