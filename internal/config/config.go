package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mathdrills/internal/domain"
)

const (
	DefaultPath     = "config/config.yaml"
	DefaultDatabase = "math_quiz_scores.db"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Quiz struct {
		// DefaultQuestions overrides each quiz type's own length when positive.
		DefaultQuestions int      `yaml:"default_questions"`
		InputMode        string   `yaml:"input_mode"`
		Files            []string `yaml:"files"`
		CacheTTL         string   `yaml:"cache_ttl"`
	} `yaml:"quiz"`
	Log struct {
		Verbose bool   `yaml:"verbose"`
		Format  string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Database.Path = DefaultDatabase
	cfg.Quiz.InputMode = string(domain.InputButtons)
	cfg.Quiz.CacheTTL = "10m"
	cfg.Log.Format = "text"
	return cfg
}

// Load reads YAML config from path on top of the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)

	if _, err := domain.ParseInputMode(cfg.Quiz.InputMode); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// PathFromEnv returns CONFIG_PATH or the default location.
func PathFromEnv() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// InputMode returns the configured default input mode.
func (c Config) InputMode() domain.InputMode {
	mode, err := domain.ParseInputMode(c.Quiz.InputMode)
	if err != nil {
		return domain.InputButtons
	}
	return mode
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MATHDRILLS_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("MATHDRILLS_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.Verbose = b
		}
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
