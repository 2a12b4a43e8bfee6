package Observability

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics of the route service.
type Collector struct {
	gatherer prometheus.Gatherer

	Optimizations        *prometheus.CounterVec
	OptimizationDuration *prometheus.HistogramVec
	RoutePoints          prometheus.Histogram
	GeocodeLookups       *prometheus.CounterVec
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Registering twice reuses the existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	optimizations, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smartroute_optimizations_total",
		Help: "Route optimizations, labeled by algorithm and result status.",
	}, []string{"algorithm", "status"}))
	if err != nil {
		return nil, err
	}

	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smartroute_optimization_duration_seconds",
		Help:    "Route optimization latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"algorithm"}))
	if err != nil {
		return nil, err
	}

	points, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "smartroute_route_points",
		Help:    "Number of points per optimization request.",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
	}))
	if err != nil {
		return nil, err
	}

	lookups, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smartroute_geocode_lookups_total",
		Help: "Geocode lookups, labeled by the tier that answered (memory, redis, database, upstream) or miss.",
	}, []string{"source"}))
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:             gatherer,
		Optimizations:        optimizations,
		OptimizationDuration: durations,
		RoutePoints:          points,
		GeocodeLookups:       lookups,
	}, nil
}

// ObserveOptimization records one optimizer call.
func (c *Collector) ObserveOptimization(algorithm, status string, points int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Optimizations.WithLabelValues(algorithm, status).Inc()
	c.OptimizationDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
	c.RoutePoints.Observe(float64(points))
}

// ObserveGeocode records which cache tier answered a lookup.
func (c *Collector) ObserveGeocode(source string) {
	if c == nil {
		return
	}
	c.GeocodeLookups.WithLabelValues(source).Inc()
}

// Handler exposes the collector's registry in the Prometheus text format.
func (c *Collector) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{}))
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register metric: %w", err)
	}
	return collector, nil
}
