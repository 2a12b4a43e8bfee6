package Config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SmartRoute/RouteOptimizer"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range append(Keys, "CONFIG_FILE") {
		if v, ok := os.LookupEnv(key); ok {
			t.Setenv(key, v)
			require.NoError(t, os.Unsetenv(key))
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "empty.json5"))
	require.NoError(t, os.WriteFile(os.Getenv("CONFIG_FILE"), []byte("{}"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 10*time.Second, cfg.Geocoder.Timeout)
	assert.Equal(t, 1024, cfg.Geocoder.CacheSize)
	assert.Equal(t, RouteOptimizer.AlgorithmTwoOpt, cfg.Optimizer.DefaultAlgorithm)
	assert.False(t, cfg.Optimizer.DefaultClosed)
	assert.Equal(t, 200, cfg.Optimizer.MaxPoints)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// comments and trailing commas are fine
		port: "8080",
		OPTIMIZER_WORKERS: 4,
		ROUTE_CLOSED: true,
		GEOCODE_TIMEOUT: "3s",
	}`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_REQUEST_ERRORS_ONLY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 4, cfg.Optimizer.Workers)
	assert.True(t, cfg.Optimizer.DefaultClosed)
	assert.Equal(t, 3*time.Second, cfg.Geocoder.Timeout)
	assert.True(t, cfg.Log.RequestErrorsOnly)

	opts := cfg.OptimizerOptions()
	assert.True(t, opts.Closed)
	assert.Equal(t, 4, opts.Workers)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.json5"))

	_, err := Load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseRejectsMalformedValues(t *testing.T) {
	_, err := parse(map[string]string{"MAX_POINTS": "many", "GEOCODE_TIMEOUT": "soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_POINTS")
	assert.Contains(t, err.Error(), "GEOCODE_TIMEOUT")
}

func TestValidate(t *testing.T) {
	cfg, err := parse(map[string]string{})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	cfg.Database.DSN = "not a dsn"
	assert.ErrorContains(t, cfg.Validate(), "DB_DSN")

	cfg.Database.DSN = "user:pass@tcp(127.0.0.1:3306)/routes?parseTime=true"
	assert.NoError(t, cfg.Validate())

	cfg.Optimizer.DefaultAlgorithm = "genetic"
	cfg.Log.Format = "xml"
	err = cfg.Validate()
	assert.ErrorContains(t, err, "ROUTE_ALGORITHM")
	assert.ErrorContains(t, err, "LOG_FORMAT")
}
