// Package config loads application configuration from file and environment
// and owns global logger initialization.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Resolver ResolverConfig `yaml:"resolver" mapstructure:"resolver"`
	Suppress SuppressConfig `yaml:"suppress" mapstructure:"suppress"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ResolverConfig configures the DNS-over-HTTPS mail-provider resolver.
type ResolverConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   int    `yaml:"rate_limit" mapstructure:"rate_limit"`

	// CachePath is an optional sqlite file for the provider cache so repeat
	// runs skip lookups for domains already classified. Empty means
	// memory-only.
	CachePath string `yaml:"cache_path" mapstructure:"cache_path"`
}

// Timeout returns the per-lookup timeout as a duration.
func (r ResolverConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSecs) * time.Second
}

// SuppressConfig configures over-represented-domain suppression.
type SuppressConfig struct {
	Threshold int    `yaml:"threshold" mapstructure:"threshold"`
	Mode      string `yaml:"mode" mapstructure:"mode"`
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
	v.SetEnvPrefix("LEADCLEAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("resolver.base_url", "https://dns.google/resolve")
	v.SetDefault("resolver.batch_size", 15)
	v.SetDefault("resolver.timeout_secs", 5)
	v.SetDefault("resolver.rate_limit", 20)
	v.SetDefault("resolver.cache_path", "")
	v.SetDefault("suppress.threshold", 6)
	v.SetDefault("suppress.mode", "flag")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
