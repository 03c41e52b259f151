package config

import (
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/xerrors"
)

// RankConfig holds the settings of the rank job.
type RankConfig struct {
	Events         string        `mapstructure:"events"`
	IngestWorkers  int           `mapstructure:"ingest_workers"`
	DampingFactor  float64       `mapstructure:"damping_factor"`
	Tolerance      float64       `mapstructure:"tolerance"`
	MaxIterations  int           `mapstructure:"max_iterations"`
	Norm           string        `mapstructure:"norm"`
	Dangling       string        `mapstructure:"dangling"`
	Workers        int           `mapstructure:"workers"`
	TopK           int           `mapstructure:"top_k"`
	UpdateInterval time.Duration `mapstructure:"update_interval"`
	StoreURI       string        `mapstructure:"store_uri"`
}

// EvaluateConfig holds the settings of the evaluate job.
type EvaluateConfig struct {
	Judgements   string  `mapstructure:"judgements"`
	K            int     `mapstructure:"k"`
	Workers      int     `mapstructure:"workers"`
	ScoreWorkers int     `mapstructure:"score_workers"`
	Weights      string  `mapstructure:"weights"`
	Bias         float64 `mapstructure:"bias"`
}

// Config holds all runtime configuration.
// Values are populated from .retweetrank.yaml, RETWEETRANK_* env vars, and
// CLI flags. Nested keys map to env vars by replacing dots with
// underscores, e.g. RETWEETRANK_RANK_TOP_K.
type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Rank     RankConfig     `mapstructure:"rank"`
	Evaluate EvaluateConfig `mapstructure:"evaluate"`
}

// SetDefaults registers the built-in defaults with viper.
func SetDefaults() {
	viper.SetDefault("log_level", "info")

	viper.SetDefault("rank.events", "")
	viper.SetDefault("rank.ingest_workers", runtime.NumCPU())
	viper.SetDefault("rank.damping_factor", 0.9)
	viper.SetDefault("rank.tolerance", 1e-6)
	viper.SetDefault("rank.max_iterations", 1000)
	viper.SetDefault("rank.norm", "l1")
	viper.SetDefault("rank.dangling", "uniform")
	viper.SetDefault("rank.workers", runtime.NumCPU())
	viper.SetDefault("rank.top_k", 10)
	viper.SetDefault("rank.update_interval", time.Duration(0))
	viper.SetDefault("rank.store_uri", "in-memory://")

	viper.SetDefault("evaluate.judgements", "")
	viper.SetDefault("evaluate.k", 10)
	viper.SetDefault("evaluate.workers", runtime.NumCPU())
	viper.SetDefault("evaluate.score_workers", runtime.NumCPU())
	viper.SetDefault("evaluate.weights", "")
	viper.SetDefault("evaluate.bias", 0.0)
}

// BindEnv makes viper consult RETWEETRANK_* environment variables.
func BindEnv() {
	viper.SetEnvPrefix("RETWEETRANK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, xerrors.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
