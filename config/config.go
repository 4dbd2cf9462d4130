package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Config holds application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Cache       CacheConfig       `yaml:"cache"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Solver      SolverConfig      `yaml:"solver"`
	Sensitivity SensitivityConfig `yaml:"sensitivity"`
	Extraction  ExtractionConfig  `yaml:"extraction"`
	Comps       CompsConfig       `yaml:"comps"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Parallelism     int           `yaml:"parallelism"`
}

type CacheConfig struct {
	Backend       string        `yaml:"backend"` // "memory" or "redis"
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	KeyPrefix     string        `yaml:"key_prefix"`
	TTL           time.Duration `yaml:"ttl"`
}

type RateLimitConfig struct {
	Capacity int           `yaml:"capacity"`
	Window   time.Duration `yaml:"window"`
}

type SolverConfig struct {
	Strategy      string  `yaml:"strategy"` // "newton" or "hybrid"
	InitialGuess  float64 `yaml:"initial_guess"`
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
}

type SensitivityConfig struct {
	Perturbations []float64 `yaml:"perturbations"`
}

type ExtractionConfig struct {
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	OCREnabled     bool   `yaml:"ocr_enabled"`
	PdfToPPMPath   string `yaml:"pdftoppm_path"`
	TesseractPath  string `yaml:"tesseract_path"`
}

type CompsConfig struct {
	APIKey             string  `yaml:"api_key"`
	AlignmentTolerance float64 `yaml:"alignment_tolerance"`
}

type LogConfig struct {
	Development bool `yaml:"development"`
}

// NewDefaultConfig creates a new configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Parallelism:     4,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
			KeyPrefix: "cre:",
			TTL:       time.Hour,
		},
		RateLimit: RateLimitConfig{
			Capacity: 30,
			Window:   time.Minute,
		},
		Solver: SolverConfig{
			Strategy:      "newton",
			InitialGuess:  0.10,
			Tolerance:     1e-5,
			MaxIterations: 1000,
		},
		Sensitivity: SensitivityConfig{
			Perturbations: []float64{-0.10, -0.05, 0, 0.05, 0.10},
		},
		Extraction: ExtractionConfig{
			MaxUploadBytes: 20 << 20,
		},
		Comps: CompsConfig{
			AlignmentTolerance: 0.05,
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Backend = "redis"
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("GROK_API_KEY"); v != "" {
		cfg.Comps.APIKey = v
	}
	if v := os.Getenv("IRR_SOLVER"); v != "" {
		cfg.Solver.Strategy = v
	}

	var err error
	if cfg.Cache.TTL, err = durationEnv("CACHE_TTL", cfg.Cache.TTL); err != nil {
		return err
	}
	if cfg.RateLimit.Window, err = durationEnv("RATE_LIMIT_WINDOW", cfg.RateLimit.Window); err != nil {
		return err
	}
	if cfg.RateLimit.Capacity, err = intEnv("RATE_LIMIT_CAPACITY", cfg.RateLimit.Capacity); err != nil {
		return err
	}
	if cfg.Extraction.OCREnabled, err = boolEnv("OCR_ENABLED", cfg.Extraction.OCREnabled); err != nil {
		return err
	}
	if cfg.Log.Development, err = boolEnv("LOG_DEVELOPMENT", cfg.Log.Development); err != nil {
		return err
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	switch c.Solver.Strategy {
	case "newton", "hybrid":
	default:
		return fmt.Errorf("solver.strategy must be newton or hybrid, got %q", c.Solver.Strategy)
	}
	if c.RateLimit.Capacity <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit capacity and window must be positive")
	}
	if c.Extraction.MaxUploadBytes <= 0 {
		return fmt.Errorf("extraction.max_upload_bytes must be positive")
	}
	return nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// NewLogger builds the process logger: JSON production output, or the
// console development encoder when log.development is set.
func (l LogConfig) NewLogger() (*zap.Logger, error) {
	if l.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
