package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"unicode"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App    AppConfig
	Log    LogConfig
	Random RandomConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
}

type LogConfig struct {
	Level  string // slog level text: debug | info | warn | error
	Format string // text | json
}

// MaxFactor bounds RANDOM_FACTOR_MAX so a product of two draws fits in int32.
const MaxFactor = 46_340

// RandomConfig bounds the random draws of the demo services.
type RandomConfig struct {
	FactorMax int // each calculator draw is in [1, FactorMax]
	SymbolMin int // inclusive
	SymbolMax int // exclusive
}

// Load reads dotenv files and populates a Config from environment variables.
//
// With no files it tries ".env" and ignores only its absence (production usually
// has none). Files passed explicitly must exist.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: loading .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("config: loading %v: %w", envFiles, err)
	}

	var errs []error
	intVar := func(key string, fallback int) int {
		v, err := envInt(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "GoScoped"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", false),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "warn"),
			Format: env("LOG_FORMAT", "text"),
		},
		Random: RandomConfig{
			FactorMax: intVar("RANDOM_FACTOR_MAX", 100),
			SymbolMin: intVar("RANDOM_SYMBOL_MIN", 10_000),
			SymbolMax: intVar("RANDOM_SYMBOL_MAX", 100_000),
		},
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("config: LOG_FORMAT must be text or json, got %q", c.Log.Format))
	}
	if c.Random.FactorMax < 1 || c.Random.FactorMax > MaxFactor {
		errs = append(errs, fmt.Errorf("config: RANDOM_FACTOR_MAX must be in [1, %d], got %d", MaxFactor, c.Random.FactorMax))
	}
	if c.Random.SymbolMin < 0 || c.Random.SymbolMax > unicode.MaxRune+1 || c.Random.SymbolMin >= c.Random.SymbolMax {
		errs = append(errs, fmt.Errorf("config: symbol range [%d, %d) is empty or outside Unicode",
			c.Random.SymbolMin, c.Random.SymbolMax))
	}
	return errors.Join(errs...)
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value, falling back to defaultVal when the value
// is unset or not an integer.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer, got %q", key, v)
	}
	return i, nil
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
