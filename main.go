package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"SmartRoute/Config"
	"SmartRoute/CronJobs"
	"SmartRoute/FiberConfig"
	"SmartRoute/Geocoder"
	"SmartRoute/Logging"
	"SmartRoute/Models"
	"SmartRoute/Observability"
)

func main() {
	cfg, err := Config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := Logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *Config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := Observability.InitTracing(ctx, cfg.Tracing, nil, logger)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer Observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	db, err := Models.Connect(cfg.Database)
	if err != nil {
		return err
	}

	metrics, err := Observability.NewCollector(nil)
	if err != nil {
		return err
	}

	memory, err := Geocoder.NewMemoryCache(cfg.Geocoder.CacheSize)
	if err != nil {
		return fmt.Errorf("geocode cache: %w", err)
	}
	tiers := []Geocoder.Cache{memory}
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable; lookups will skip the shared cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		tiers = append(tiers, Geocoder.NewRedisCache(client, cfg.Geocoder.CacheTTL))
	}
	tiers = append(tiers, Geocoder.NewStoreCache(db))

	var geocoder Geocoder.Geocoder
	if cfg.Geocoder.APIKey != "" {
		geocoder = Geocoder.NewCached(
			Geocoder.NewOpenCage(cfg.Geocoder.APIKey, cfg.Geocoder.BaseURL, cfg.Geocoder.Timeout),
			tiers,
			Geocoder.WithLogger(logger),
			Geocoder.WithLookupTimeout(cfg.Geocoder.Timeout),
			Geocoder.WithObserver(metrics.ObserveGeocode),
		)
	} else {
		logger.Warn("OPENCAGE_API_KEY not set; requests must carry coordinates for every location")
	}

	purger := CronJobs.NewCachePurger(db, cfg.Geocoder.CacheTTL, cfg.Geocoder.PurgeSchedule, memory, logger)
	if err := purger.Start(); err != nil {
		return err
	}
	defer purger.Stop()

	app := FiberConfig.NewApp(FiberConfig.Dependencies{
		Config:   cfg,
		Log:      logger,
		Geocoder: geocoder,
		Metrics:  metrics,
	})

	errc := make(chan error, 1)
	go func() {
		logger.Info("server up", zap.String("port", cfg.Port))
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
