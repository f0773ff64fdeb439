package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the CLI's own configuration, loaded from
// ~/.config/headwater/config.yaml and HEADWATER_* environment variables.
type Config struct {
	EnvFile     string `mapstructure:"env_file"`
	SecretSheet string `mapstructure:"secret_sheet"`
	Verbose     bool   `mapstructure:"verbose"`
	Debug       bool   `mapstructure:"debug"`
	LogFile     string `mapstructure:"log_file"`
}

// LoadConfig loads CLI configuration from the config file and
// environment variables, falling back to defaults when neither exists.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.config/headwater")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvPrefix("HEADWATER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("env_file", ".env")
	v.SetDefault("secret_sheet", "DatawarehouseUP")
	v.SetDefault("verbose", false)
	v.SetDefault("debug", false)
	v.SetDefault("log_file", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}
