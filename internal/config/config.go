package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Google  GoogleConfig  `yaml:"google" mapstructure:"google"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Scrape  ScrapeConfig  `yaml:"scrape" mapstructure:"scrape"`
	Forward ForwardConfig `yaml:"forward" mapstructure:"forward"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// GoogleConfig holds the Maps Platform credentials and client tuning.
type GoogleConfig struct {
	APIKey    string  `yaml:"api_key" mapstructure:"api_key"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SearchConfig configures discovery and enrichment behavior.
type SearchConfig struct {
	MaxRadiusKm       int `yaml:"max_radius_km" mapstructure:"max_radius_km"`
	DefaultRadiusKm   int `yaml:"default_radius_km" mapstructure:"default_radius_km"`
	MaxEnriched       int `yaml:"max_enriched" mapstructure:"max_enriched"`
	EnrichConcurrency int `yaml:"enrich_concurrency" mapstructure:"enrich_concurrency"`
	PageDelaySecs     int `yaml:"page_delay_secs" mapstructure:"page_delay_secs"`
}

// ScrapeConfig configures the website scraper.
type ScrapeConfig struct {
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// ForwardConfig configures webhook delivery. These settings are mutable at
// runtime through the settings Service.
type ForwardConfig struct {
	URL         string `yaml:"url" mapstructure:"url" json:"url"`
	Format      string `yaml:"format" mapstructure:"format" json:"format"`
	BearerToken string `yaml:"bearer_token" mapstructure:"bearer_token" json:"bearer_token"`
	APIKey      string `yaml:"api_key" mapstructure:"api_key" json:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs" json:"timeout_secs"`
	// Retries is accepted and persisted for webhook endpoints that read
	// it, but delivery currently makes a single attempt.
	Retries int `yaml:"retries" mapstructure:"retries" json:"retries"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BROKERFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("google.rate_limit", 10.0)
	v.SetDefault("search.max_radius_km", 100)
	v.SetDefault("search.default_radius_km", 25)
	v.SetDefault("search.max_enriched", 10)
	v.SetDefault("search.enrich_concurrency", 1)
	v.SetDefault("search.page_delay_secs", 2)
	v.SetDefault("scrape.timeout_secs", 10)
	v.SetDefault("scrape.max_body_bytes", 2<<20)
	v.SetDefault("forward.format", "enhanced")
	v.SetDefault("forward.timeout_secs", 30)
	v.SetDefault("forward.retries", 3)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
