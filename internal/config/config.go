// Package config provides configuration loading and validation for the matcher.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/model"
	"github.com/jonathan/candidate-matcher/internal/recommend"
	"github.com/jonathan/candidate-matcher/internal/scoring"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes environment overrides, e.g. MATCH_STORE_DRIVER.
const EnvPrefix = "MATCH"

// Store drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the full matcher configuration. Every field has a default, so an
// empty file (or no file at all) yields a working setup.
type Config struct {
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Model     ModelConfig     `mapstructure:"model"`
	Store     StoreConfig     `mapstructure:"store"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
}

// ScoringConfig controls the composite score.
type ScoringConfig struct {
	Weights scoring.Weights `mapstructure:"weights"`
	// ExtraSkills extends the built-in skill vocabulary.
	ExtraSkills []string `mapstructure:"extra_skills"`
	Concurrency int      `mapstructure:"concurrency"` // peer scoring workers
}

// RecommendConfig controls job recommendations.
type RecommendConfig struct {
	Limit                  int      `mapstructure:"limit"`
	BetterMatchesLimit     int      `mapstructure:"better_matches_limit"`
	PremiumSalaryThreshold float64  `mapstructure:"premium_salary_threshold"`
	SeniorityKeywords      []string `mapstructure:"seniority_keywords"`
	PredictiveBlend        float64  `mapstructure:"predictive_blend"`
}

// ModelConfig names the predictive model and its training parameters.
type ModelConfig struct {
	Name  string            `mapstructure:"name"`
	Train model.TrainConfig `mapstructure:"train"`
}

// StoreConfig selects where artifacts and recommendation history live.
type StoreConfig struct {
	Driver      string `mapstructure:"driver"`
	Dir         string `mapstructure:"dir"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	DatabaseURL string `mapstructure:"database_url"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Port      int     `mapstructure:"port"`
	RateLimit float64 `mapstructure:"rate_limit"` // requests per second per client, 0 disables
	RateBurst int     `mapstructure:"rate_burst"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Scoring: ScoringConfig{
			Weights:     scoring.DefaultWeights(),
			Concurrency: 8,
		},
		Recommend: RecommendConfig{
			Limit:                  recommend.DefaultLimit,
			BetterMatchesLimit:     10,
			PremiumSalaryThreshold: recommend.DefaultPremiumSalaryThreshold,
			SeniorityKeywords:      append([]string(nil), recommend.DefaultSeniorityKeywords...),
			PredictiveBlend:        recommend.DefaultPredictiveBlend,
		},
		Model: ModelConfig{
			Name:  model.DefaultName,
			Train: model.DefaultTrainConfig(),
		},
		Store: StoreConfig{
			Driver:     DriverFile,
			Dir:        "data/models",
			SQLitePath: "data/matcher.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Port:      8080,
			RateLimit: 10,
			RateBurst: 20,
		},
	}
}

// setDefaults registers every default with viper so that environment
// overrides apply even to keys missing from the file.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("scoring.weights.skills", d.Scoring.Weights.Skills)
	v.SetDefault("scoring.weights.similarity", d.Scoring.Weights.Similarity)
	v.SetDefault("scoring.weights.experience", d.Scoring.Weights.Experience)
	v.SetDefault("scoring.weights.language", d.Scoring.Weights.Language)
	v.SetDefault("scoring.extra_skills", []string{})
	v.SetDefault("scoring.concurrency", d.Scoring.Concurrency)
	v.SetDefault("recommend.limit", d.Recommend.Limit)
	v.SetDefault("recommend.better_matches_limit", d.Recommend.BetterMatchesLimit)
	v.SetDefault("recommend.premium_salary_threshold", d.Recommend.PremiumSalaryThreshold)
	v.SetDefault("recommend.seniority_keywords", d.Recommend.SeniorityKeywords)
	v.SetDefault("recommend.predictive_blend", d.Recommend.PredictiveBlend)
	v.SetDefault("model.name", d.Model.Name)
	v.SetDefault("model.train.iterations", d.Model.Train.Iterations)
	v.SetDefault("model.train.learning_rate", d.Model.Train.LearningRate)
	v.SetDefault("model.train.l2", d.Model.Train.L2)
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dir", d.Store.Dir)
	v.SetDefault("store.sqlite_path", d.Store.SQLitePath)
	v.SetDefault("store.database_url", d.Store.DatabaseURL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.rate_burst", d.Server.RateBurst)
}

// LoadConfig loads configuration from a JSON or YAML file, applying defaults
// and MATCH_* environment overrides. An empty path loads defaults and
// environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		// Resolve path relative to current directory if not absolute
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Scoring.Weights.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("config error: scoring.weights: %w", err))
	}
	if c.Scoring.Concurrency < 0 {
		errs = append(errs, errors.New("config error: 'scoring.concurrency' must be non-negative"))
	}
	if c.Recommend.Limit < 0 || c.Recommend.BetterMatchesLimit < 0 {
		errs = append(errs, errors.New("config error: recommendation limits must be non-negative"))
	}
	if c.Recommend.PremiumSalaryThreshold < 0 {
		errs = append(errs, errors.New("config error: 'recommend.premium_salary_threshold' must be non-negative"))
	}
	if c.Recommend.PredictiveBlend < 0 || c.Recommend.PredictiveBlend > 1 {
		errs = append(errs, errors.New("config error: 'recommend.predictive_blend' must be within [0, 1]"))
	}
	if c.Model.Train.Iterations < 0 || c.Model.Train.LearningRate < 0 || c.Model.Train.L2 < 0 {
		errs = append(errs, errors.New("config error: model training parameters must be non-negative"))
	}

	switch c.Store.Driver {
	case DriverFile:
		if c.Store.Dir == "" {
			errs = append(errs, errors.New("config error: 'store.dir' is required for the file driver"))
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("config error: 'store.sqlite_path' is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("config error: 'store.database_url' is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("config error: unknown store driver %q", c.Store.Driver))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("config error: log.level: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("config error: 'log.format' must be json or console, got %q", c.Log.Format))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("config error: 'server.port' out of range: %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		errs = append(errs, errors.New("config error: rate limits must be non-negative"))
	}

	return errors.Join(errs...)
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// This is used for configurations assembled in code rather than loaded from a file.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Scoring.Weights == (scoring.Weights{}) {
		result.Scoring.Weights = defaults.Scoring.Weights
	}
	if result.Scoring.Concurrency == 0 {
		result.Scoring.Concurrency = defaults.Scoring.Concurrency
	}
	if len(result.Scoring.ExtraSkills) == 0 {
		result.Scoring.ExtraSkills = defaults.Scoring.ExtraSkills
	}

	if result.Recommend.Limit == 0 {
		result.Recommend.Limit = defaults.Recommend.Limit
	}
	if result.Recommend.BetterMatchesLimit == 0 {
		result.Recommend.BetterMatchesLimit = defaults.Recommend.BetterMatchesLimit
	}
	if result.Recommend.PremiumSalaryThreshold == 0 {
		result.Recommend.PremiumSalaryThreshold = defaults.Recommend.PremiumSalaryThreshold
	}
	if len(result.Recommend.SeniorityKeywords) == 0 {
		result.Recommend.SeniorityKeywords = defaults.Recommend.SeniorityKeywords
	}
	if result.Recommend.PredictiveBlend == 0 {
		result.Recommend.PredictiveBlend = defaults.Recommend.PredictiveBlend
	}

	if result.Model.Name == "" {
		result.Model.Name = defaults.Model.Name
	}
	if result.Model.Train == (model.TrainConfig{}) {
		result.Model.Train = defaults.Model.Train
	}

	if result.Store.Driver == "" {
		result.Store.Driver = defaults.Store.Driver
	}
	if result.Store.Dir == "" {
		result.Store.Dir = defaults.Store.Dir
	}
	if result.Store.SQLitePath == "" {
		result.Store.SQLitePath = defaults.Store.SQLitePath
	}
	if result.Store.DatabaseURL == "" {
		result.Store.DatabaseURL = defaults.Store.DatabaseURL
	}

	if result.Log.Level == "" {
		result.Log.Level = defaults.Log.Level
	}
	if result.Log.Format == "" {
		result.Log.Format = defaults.Log.Format
	}

	if result.Server.Port == 0 {
		result.Server.Port = defaults.Server.Port
	}
	if result.Server.RateLimit == 0 {
		result.Server.RateLimit = defaults.Server.RateLimit
	}
	if result.Server.RateBurst == 0 {
		result.Server.RateBurst = defaults.Server.RateBurst
	}

	return result
}
