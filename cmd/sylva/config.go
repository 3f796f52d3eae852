package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".sylva"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for sylva settings.
const envPrefix = "SYLVA"

// Config holds CLI settings shared by all commands.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
	Metrics  bool   `mapstructure:"metrics"`
	NoColor  bool   `mapstructure:"no_color"`
}

// LoadConfig loads configuration from file, env vars, and defaults. If
// configPath is non-empty it is used as the explicit config file path;
// otherwise the config file is searched in CWD and $HOME. A missing config
// file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	viperCfg.SetDefault("log_level", "info")
	viperCfg.SetDefault("log_json", false)
	viperCfg.SetDefault("metrics", false)
	viperCfg.SetDefault("no_color", false)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	return &cfg, nil
}
