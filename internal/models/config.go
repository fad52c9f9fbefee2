package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	RemoteBaseURL string `mapstructure:"remote_base_url"`
	AuthToken     string `mapstructure:"auth_token"`
	RefreshToken  string `mapstructure:"refresh_token"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	Namespace     string `mapstructure:"namespace"`

	// GracePeriod is how long after an order save its inventory deduction
	// becomes eligible; ScanInterval is how often eligible orders are
	// looked for and must stay well below GracePeriod.
	GracePeriod  time.Duration `mapstructure:"grace_period"`
	ScanInterval time.Duration `mapstructure:"scan_interval"`

	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	TaxRate float64 `mapstructure:"tax_rate"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	viper.SetDefault("namespace", "possync")
	viper.SetDefault("grace_period", "2m")
	viper.SetDefault("scan_interval", "20s")
	viper.SetDefault("request_timeout", "15s")
	viper.SetDefault("tax_rate", 0.05)
	viper.SetDefault("redis_addr", "localhost:6379")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if config.ScanInterval >= config.GracePeriod {
		return nil, fmt.Errorf("scan_interval %s must be shorter than grace_period %s", config.ScanInterval, config.GracePeriod)
	}

	return &config, nil
}
