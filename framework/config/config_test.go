package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/km-arc/go-scoped/framework/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		// Setenv registers the restore; godotenv only fills unset keys.
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

var allKeys = []string{
	"APP_NAME", "APP_ENV", "APP_DEBUG", "LOG_LEVEL", "LOG_FORMAT",
	"RANDOM_FACTOR_MAX", "RANDOM_SYMBOL_MIN", "RANDOM_SYMBOL_MAX",
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t, allKeys...)
	cfg, err := config.Load(writeEnvFile(t, ""))
	require.NoError(t, err)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"App.Name", cfg.App.Name, "GoScoped"},
		{"App.Env", cfg.App.Env, "local"},
		{"App.Debug", cfg.App.Debug, false},
		{"Log.Level", cfg.Log.Level, "warn"},
		{"Log.Format", cfg.Log.Format, "text"},
		{"Random.FactorMax", cfg.Random.FactorMax, 100},
		{"Random.SymbolMin", cfg.Random.SymbolMin, 10_000},
		{"Random.SymbolMax", cfg.Random.SymbolMax, 100_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	clearEnv(t, allKeys...)
	t.Setenv("APP_NAME", "MyApp")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("RANDOM_FACTOR_MAX", "6")

	cfg, err := config.Load(writeEnvFile(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "MyApp", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 6, cfg.Random.FactorMax)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	clearEnv(t, allKeys...)
	path := writeEnvFile(t, "APP_NAME=FromFile\nLOG_LEVEL=debug\nRANDOM_SYMBOL_MIN=65\nRANDOM_SYMBOL_MAX=91\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "FromFile", cfg.App.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 65, cfg.Random.SymbolMin)
	assert.Equal(t, 91, cfg.Random.SymbolMax)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	clearEnv(t, allKeys...)
	t.Setenv("APP_NAME", "FromEnv")

	cfg, err := config.Load(writeEnvFile(t, "APP_NAME=FromFile\n"))
	require.NoError(t, err)
	assert.Equal(t, "FromEnv", cfg.App.Name)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	clearEnv(t, allKeys...)
	t.Setenv("LOG_FORMAT", "xml")
	t.Setenv("RANDOM_FACTOR_MAX", "0")

	_, err := config.Load(writeEnvFile(t, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
	assert.Contains(t, err.Error(), "RANDOM_FACTOR_MAX")
}

func TestLoad_NonNumericIntegerFails(t *testing.T) {
	clearEnv(t, allKeys...)
	t.Setenv("RANDOM_FACTOR_MAX", "abc")
	t.Setenv("RANDOM_SYMBOL_MAX", "1e5")

	_, err := config.Load(writeEnvFile(t, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RANDOM_FACTOR_MAX")
	assert.Contains(t, err.Error(), "RANDOM_SYMBOL_MAX")
}

func TestLoad_DefaultEnvFile(t *testing.T) {
	clearEnv(t, allKeys...)

	t.Run("absent is ignored", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, "GoScoped", cfg.App.Name)
	})

	t.Run("present is read", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_NAME=FromDotenv\n"), 0o600))
		t.Chdir(dir)
		clearEnv(t, "APP_NAME")

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, "FromDotenv", cfg.App.Name)
	})

	t.Run("malformed fails", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BAD-KEY=1\n"), 0o600))
		t.Chdir(dir)

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".env")
	})
}

// ── Validate ─────────────────────────────────────────────────────────────────

func TestValidate_SymbolRange(t *testing.T) {
	valid := config.Config{
		Log:    config.LogConfig{Format: "text"},
		Random: config.RandomConfig{FactorMax: 1, SymbolMin: 10, SymbolMax: 11},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name     string
		min, max int
	}{
		{"empty", 10, 10},
		{"inverted", 11, 10},
		{"negative", -1, 10},
		{"beyond unicode", 0, 0x110001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			cfg.Random.SymbolMin, cfg.Random.SymbolMax = tt.min, tt.max
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_FactorMaxBounds(t *testing.T) {
	cfg := config.Config{
		Log:    config.LogConfig{Format: "text"},
		Random: config.RandomConfig{FactorMax: config.MaxFactor, SymbolMin: 10, SymbolMax: 11},
	}
	require.NoError(t, cfg.Validate())

	for _, factorMax := range []int{0, config.MaxFactor + 1, 1 << 30} {
		cfg.Random.FactorMax = factorMax
		assert.Error(t, cfg.Validate(), factorMax)
	}
}

// ── Get / GetInt / GetBool ───────────────────────────────────────────────────

func TestGet_ReturnsValue(t *testing.T) {
	t.Setenv("CUSTOM_KEY", "hello")
	assert.Equal(t, "hello", config.Get("CUSTOM_KEY", "default"))
}

func TestGet_ReturnsFallback(t *testing.T) {
	t.Setenv("MISSING_KEY", "")
	assert.Equal(t, "fallback", config.Get("MISSING_KEY", "fallback"))
}

func TestGetInt_ReturnsFallbackOnInvalid(t *testing.T) {
	t.Setenv("SOME_INT", "notanint")
	assert.Equal(t, 99, config.GetInt("SOME_INT", 99))
}

func TestGetBool(t *testing.T) {
	for _, val := range []string{"true", "1", "True", "TRUE"} {
		t.Setenv("BOOL_KEY", val)
		assert.True(t, config.GetBool("BOOL_KEY", false), val)
	}
	t.Setenv("BOOL_KEY", "notabool")
	assert.True(t, config.GetBool("BOOL_KEY", true))
}
