package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"comboselect/internal/service"
)

// Config holds the server settings and the pipeline defaults applied when a
// request leaves a parameter unset.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DefaultsConfig struct {
	BinCount             int     `mapstructure:"bin_count"`
	CorrelationThreshold float64 `mapstructure:"correlation_threshold"`
	ThresholdTolerance   float64 `mapstructure:"threshold_tolerance"`
	NormalizationMethod  string  `mapstructure:"normalization_method"`
}

// Load reads comboselect.yaml from the working directory if present, then
// applies COMBOSELECT_* environment overrides on top of the built-in
// defaults. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8001)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("defaults.bin_count", 14)
	v.SetDefault("defaults.correlation_threshold", 0.85)
	v.SetDefault("defaults.threshold_tolerance", 0.0)
	v.SetDefault("defaults.normalization_method", "min_max")

	v.SetConfigName("comboselect")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("COMBOSELECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("server.port must be in (0, 65535]")
	}
	if c.Defaults.BinCount <= 0 {
		return errors.New("defaults.bin_count must be a positive integer")
	}
	if c.Defaults.CorrelationThreshold < 0 || c.Defaults.CorrelationThreshold > 1 {
		return errors.New("defaults.correlation_threshold must be within [0, 1]")
	}
	if c.Defaults.ThresholdTolerance < 0 {
		return errors.New("defaults.threshold_tolerance must be non-negative")
	}
	if _, err := service.ParseNormalizationMethod(c.Defaults.NormalizationMethod); err != nil {
		return err
	}
	return nil
}
