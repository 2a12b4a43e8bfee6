package Config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"SmartRoute/RouteOptimizer"
)

// DefaultFile is read when CONFIG_FILE is unset and the file exists.
const DefaultFile = "config.json5"

type Config struct {
	Port         string
	TemplatesDir string
	Database     DatabaseConfig
	Geocoder     GeocoderConfig
	Redis        RedisConfig
	Auth         AuthConfig
	Log          LogConfig
	Tracing      TracingConfig
	Optimizer    OptimizerConfig
}

type DatabaseConfig struct {
	Driver string // sqlite | mysql
	DSN    string
}

type GeocoderConfig struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	CacheSize     int
	CacheTTL      time.Duration
	PurgeSchedule string
	Concurrency   int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	// JWTSecret enables bearer authentication on /api when set.
	JWTSecret string
}

type LogConfig struct {
	Level  string
	Format string // json | console
	File   string
	// RequestErrorsOnly limits request logging to 4xx and 5xx responses.
	RequestErrorsOnly bool
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
}

type OptimizerConfig struct {
	Timeout           time.Duration
	IterationFactor   int
	Workers           int
	MaxPoints         int
	DefaultClosed     bool
	DefaultAlgorithm  RouteOptimizer.Algorithm
	DefaultTravelMode RouteOptimizer.TravelMode
}

// Keys lists every recognised setting. Values come from the config file
// first and are overridden by environment variables of the same name.
var Keys = []string{
	"PORT", "TEMPLATES_DIR",
	"DB_DRIVER", "DB_DSN",
	"OPENCAGE_API_KEY", "OPENCAGE_URL", "GEOCODE_TIMEOUT", "GEOCODE_CACHE_SIZE",
	"GEOCODE_CACHE_TTL", "GEOCODE_PURGE_SCHEDULE", "GEOCODE_CONCURRENCY",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"JWT_SECRET",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_FILE", "LOG_REQUEST_ERRORS_ONLY",
	"TRACING_ENABLED", "TRACING_SERVICE_NAME",
	"OPTIMIZE_TIMEOUT", "OPTIMIZER_ITERATION_FACTOR", "OPTIMIZER_WORKERS", "MAX_POINTS",
	"ROUTE_CLOSED", "ROUTE_ALGORITHM", "TRAVEL_MODE",
}

// Load reads .env, the optional JSON5 config file and the environment.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load(".env")

	values := make(map[string]string)
	path, explicit := os.LookupEnv("CONFIG_FILE")
	if !explicit {
		path = DefaultFile
	}
	if err := readFile(path, values); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	for _, key := range Keys {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	cfg, err := parse(values)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readFile decodes a flat JSON5 object keyed by setting name.
func readFile(path string, values map[string]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var raw map[string]interface{}
	if err := json5.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for k, v := range raw {
		key := strings.ToUpper(k)
		switch tv := v.(type) {
		case string:
			values[key] = tv
		case float64:
			values[key] = strconv.FormatFloat(tv, 'f', -1, 64)
		case bool:
			values[key] = strconv.FormatBool(tv)
		case nil:
		default:
			return fmt.Errorf("parse %s: %s must be a string, number or boolean", path, k)
		}
	}
	return nil
}

func parse(values map[string]string) (*Config, error) {
	p := &parser{values: values}
	cfg := &Config{
		Port:         p.str("PORT", "3001"),
		TemplatesDir: p.str("TEMPLATES_DIR", "./Templates"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(p.str("DB_DRIVER", "sqlite")),
			DSN:    p.str("DB_DSN", "database.db"),
		},
		Geocoder: GeocoderConfig{
			APIKey:        p.str("OPENCAGE_API_KEY", ""),
			BaseURL:       p.str("OPENCAGE_URL", "https://api.opencagedata.com"),
			Timeout:       p.duration("GEOCODE_TIMEOUT", 10*time.Second),
			CacheSize:     p.integer("GEOCODE_CACHE_SIZE", 1024),
			CacheTTL:      p.duration("GEOCODE_CACHE_TTL", 720*time.Hour),
			PurgeSchedule: p.str("GEOCODE_PURGE_SCHEDULE", "0 0 3 * * *"),
			Concurrency:   p.integer("GEOCODE_CONCURRENCY", 4),
		},
		Redis: RedisConfig{
			Addr:     p.str("REDIS_ADDR", ""),
			Password: p.str("REDIS_PASSWORD", ""),
			DB:       p.integer("REDIS_DB", 0),
		},
		Auth: AuthConfig{JWTSecret: p.str("JWT_SECRET", "")},
		Log: LogConfig{
			Level:             p.str("LOG_LEVEL", "info"),
			Format:            strings.ToLower(p.str("LOG_FORMAT", "json")),
			File:              p.str("LOG_FILE", ""),
			RequestErrorsOnly: p.boolean("LOG_REQUEST_ERRORS_ONLY", false),
		},
		Tracing: TracingConfig{
			Enabled:     p.boolean("TRACING_ENABLED", false),
			ServiceName: p.str("TRACING_SERVICE_NAME", "smartroute"),
		},
		Optimizer: OptimizerConfig{
			Timeout:           p.duration("OPTIMIZE_TIMEOUT", 5*time.Second),
			IterationFactor:   p.integer("OPTIMIZER_ITERATION_FACTOR", RouteOptimizer.DefaultIterationFactor),
			Workers:           p.integer("OPTIMIZER_WORKERS", 1),
			MaxPoints:         p.integer("MAX_POINTS", 200),
			DefaultClosed:     p.boolean("ROUTE_CLOSED", false),
			DefaultAlgorithm:  RouteOptimizer.Algorithm(p.str("ROUTE_ALGORITHM", string(RouteOptimizer.AlgorithmTwoOpt))),
			DefaultTravelMode: RouteOptimizer.TravelMode(p.str("TRAVEL_MODE", string(RouteOptimizer.Driving))),
		},
	}
	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	switch c.Database.Driver {
	case "sqlite":
	case "mysql":
		if _, err := mysql.ParseDSN(c.Database.DSN); err != nil {
			errs = append(errs, fmt.Errorf("DB_DSN: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.Database.Driver))
	}
	if c.Geocoder.Timeout <= 0 {
		errs = append(errs, errors.New("GEOCODE_TIMEOUT must be positive"))
	}
	if c.Geocoder.CacheSize <= 0 {
		errs = append(errs, errors.New("GEOCODE_CACHE_SIZE must be positive"))
	}
	if c.Geocoder.Concurrency <= 0 {
		errs = append(errs, errors.New("GEOCODE_CONCURRENCY must be positive"))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q must be json or console", c.Log.Format))
	}
	if c.Optimizer.Timeout <= 0 {
		errs = append(errs, errors.New("OPTIMIZE_TIMEOUT must be positive"))
	}
	if c.Optimizer.IterationFactor <= 0 {
		errs = append(errs, errors.New("OPTIMIZER_ITERATION_FACTOR must be positive"))
	}
	if c.Optimizer.Workers <= 0 {
		errs = append(errs, errors.New("OPTIMIZER_WORKERS must be positive"))
	}
	if c.Optimizer.MaxPoints <= 0 {
		errs = append(errs, errors.New("MAX_POINTS must be positive"))
	}
	if !knownAlgorithm(c.Optimizer.DefaultAlgorithm) {
		errs = append(errs, fmt.Errorf("ROUTE_ALGORITHM %q is not supported", c.Optimizer.DefaultAlgorithm))
	}
	if _, ok := RouteOptimizer.AverageSpeeds[c.Optimizer.DefaultTravelMode]; !ok {
		errs = append(errs, fmt.Errorf("TRAVEL_MODE %q is not supported", c.Optimizer.DefaultTravelMode))
	}
	return errors.Join(errs...)
}

// OptimizerOptions converts the configured defaults into optimizer options.
func (c *Config) OptimizerOptions() RouteOptimizer.Options {
	return RouteOptimizer.Options{
		Closed:          c.Optimizer.DefaultClosed,
		Algorithm:       c.Optimizer.DefaultAlgorithm,
		IterationFactor: c.Optimizer.IterationFactor,
		Workers:         c.Optimizer.Workers,
	}
}

func knownAlgorithm(a RouteOptimizer.Algorithm) bool {
	for _, known := range RouteOptimizer.Algorithms {
		if a == known {
			return true
		}
	}
	return false
}

type parser struct {
	values map[string]string
	errs   []error
}

func (p *parser) str(key, def string) string {
	if v, ok := p.values[key]; ok && v != "" {
		return v
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	v, ok := p.values[key]
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *parser) boolean(key string, def bool) bool {
	v, ok := p.values[key]
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v, ok := p.values[key]
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
