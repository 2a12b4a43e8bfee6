package Geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"

	"SmartRoute/Models"
)

// Cache is one tier of the geocode cache. Keys are normalized names.
type Cache interface {
	Name() string
	Get(ctx context.Context, key string) (Location, bool, error)
	Set(ctx context.Context, key string, loc Location) error
}

// MemoryCache keeps recent lookups in process.
type MemoryCache struct {
	entries *lru.Cache[string, Location]
}

func NewMemoryCache(size int) (*MemoryCache, error) {
	entries, err := lru.New[string, Location](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{entries: entries}, nil
}

func (m *MemoryCache) Name() string { return "memory" }

func (m *MemoryCache) Get(_ context.Context, key string) (Location, bool, error) {
	loc, ok := m.entries.Get(key)
	return loc, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, loc Location) error {
	m.entries.Add(key, loc)
	return nil
}

// Purge drops every entry.
func (m *MemoryCache) Purge() { m.entries.Purge() }

// RedisCache shares lookups between service instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: "smartroute:geocode:"}
}

func (r *RedisCache) Name() string { return "redis" }

func (r *RedisCache) Get(ctx context.Context, key string) (Location, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Location{}, false, nil
	}
	if err != nil {
		return Location{}, false, err
	}
	var loc Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return Location{}, false, fmt.Errorf("decode cached location: %w", err)
	}
	return loc, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, loc Location) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+key, data, r.ttl).Err()
}

// StoreCache persists lookups in the SQL database.
type StoreCache struct {
	db *gorm.DB
}

func NewStoreCache(db *gorm.DB) *StoreCache {
	return &StoreCache{db: db}
}

func (s *StoreCache) Name() string { return "database" }

func (s *StoreCache) Get(ctx context.Context, key string) (Location, bool, error) {
	rec, err := Models.FindGeocode(s.db.WithContext(ctx), key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Location{}, false, nil
	}
	if err != nil {
		return Location{}, false, err
	}
	return Location{
		Name:             rec.Name,
		Lat:              rec.Latitude,
		Lon:              rec.Longitude,
		FormattedAddress: rec.FormattedAddress,
		Raw:              rec.Raw,
	}, true, nil
}

func (s *StoreCache) Set(ctx context.Context, key string, loc Location) error {
	return Models.SaveGeocode(s.db.WithContext(ctx), &Models.GeocodeRecord{
		Query:            key,
		Name:             loc.Name,
		Latitude:         loc.Lat,
		Longitude:        loc.Lon,
		FormattedAddress: loc.FormattedAddress,
		Provider:         loc.Source,
		Raw:              loc.Raw,
	})
}
