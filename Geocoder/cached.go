package Geocoder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cached answers from the first cache tier that knows a name and falls back
// to the upstream geocoder. A hit in a later tier is copied into the earlier
// ones; an upstream answer is written to all of them. Tier failures are
// logged and skipped.
type Cached struct {
	upstream Geocoder
	tiers    []Cache
	log      *zap.Logger
	observe  func(source string)
	timeout  time.Duration
	flight   singleflight.Group
}

type CachedOption func(*Cached)

// WithLogger sets the logger used for tier failures.
func WithLogger(log *zap.Logger) CachedOption {
	return func(c *Cached) { c.log = log }
}

// WithObserver is called with the answering tier name, "upstream" or "miss".
func WithObserver(observe func(source string)) CachedOption {
	return func(c *Cached) { c.observe = observe }
}

// WithLookupTimeout bounds one shared upstream lookup. The lookup outlives
// the caller that started it, so this is its only deadline.
func WithLookupTimeout(d time.Duration) CachedOption {
	return func(c *Cached) { c.timeout = d }
}

func NewCached(upstream Geocoder, tiers []Cache, opts ...CachedOption) *Cached {
	c := &Cached{
		upstream: upstream,
		tiers:    tiers,
		log:      zap.NewNop(),
		observe:  func(string) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cached) Geocode(ctx context.Context, name string) (Location, error) {
	key := normalize(name)
	if key == "" {
		return Location{}, fmt.Errorf("%w: empty name", ErrNotFound)
	}

	for i, tier := range c.tiers {
		loc, ok, err := tier.Get(ctx, key)
		if err != nil {
			c.log.Warn("geocode cache read failed", zap.String("tier", tier.Name()), zap.String("key", key), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		c.fill(ctx, key, loc, c.tiers[:i])
		c.observe(tier.Name())
		loc.Name = name
		loc.Source = tier.Name()
		return loc, nil
	}

	// Callers with the same key share one lookup. It runs detached from any
	// single caller's context; each caller stops waiting on its own.
	ch := c.flight.DoChan(key, func() (interface{}, error) {
		lookupCtx := context.WithoutCancel(ctx)
		if c.timeout > 0 {
			var cancel context.CancelFunc
			lookupCtx, cancel = context.WithTimeout(lookupCtx, c.timeout)
			defer cancel()
		}
		loc, err := c.upstream.Geocode(lookupCtx, name)
		if err != nil {
			return Location{}, err
		}
		c.fill(lookupCtx, key, loc, c.tiers)
		return loc, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Location{}, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		if errors.Is(res.Err, ErrNotFound) {
			c.observe("miss")
		}
		return Location{}, res.Err
	}
	c.observe("upstream")
	loc := res.Val.(Location)
	loc.Name = name
	return loc, nil
}

// fill stores loc under key. The stored name is the key so tiers do not
// depend on which caller's spelling arrived first.
func (c *Cached) fill(ctx context.Context, key string, loc Location, tiers []Cache) {
	loc.Name = key
	for _, tier := range tiers {
		if err := tier.Set(ctx, key, loc); err != nil {
			c.log.Warn("geocode cache write failed", zap.String("tier", tier.Name()), zap.String("key", key), zap.Error(err))
		}
	}
}
