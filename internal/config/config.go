package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Config holds jmuzzle settings from jmuzzle.yaml and JMUZZLE_* variables
type Config struct {
	Log       LogConfig `mapstructure:"log"`
	Output    string    `mapstructure:"output"`
	MaxDepth  int       `mapstructure:"max_depth"`
	Classpath string    `mapstructure:"classpath"`
	Parent    string    `mapstructure:"parent"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	OutputFormats = []string{"cli", "json", "html", "tui"}
	LogFormats    = []string{"console", "json"}
	LogLevels     = []string{"debug", "info", "warn", "error"}
)

// Load reads path, or jmuzzle.yaml in the working directory when path is
// empty. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("output", "cli")
	v.SetDefault("max_depth", 64)
	v.SetDefault("classpath", "")
	v.SetDefault("parent", "")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("jmuzzle")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("JMUZZLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.Output) {
		return fmt.Errorf("output must be one of %s, got: %s", strings.Join(OutputFormats, ", "), c.Output)
	}
	if !slices.Contains(LogFormats, c.Log.Format) {
		return fmt.Errorf("log.format must be one of %s, got: %s", strings.Join(LogFormats, ", "), c.Log.Format)
	}
	if !slices.Contains(LogLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log.level must be one of %s, got: %s", strings.Join(LogLevels, ", "), c.Log.Level)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got: %d", c.MaxDepth)
	}
	return nil
}
