package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/mod-overlay/modfs"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Mods ModsConfig `mapstructure:"mods"`
	Log  LogConfig  `mapstructure:"log"`
}

// ModsConfig controls where mods are discovered and how the index is sized.
type ModsConfig struct {
	Root          string `mapstructure:"root"`
	ManifestName  string `mapstructure:"manifestName"`
	IgnoreFile    string `mapstructure:"ignoreFile"`
	MaxComponents int    `mapstructure:"maxComponents"`
	BucketCount   int    `mapstructure:"bucketCount"`
	Workers       int    `mapstructure:"workers"` // 0 = GOMAXPROCS
}

// LogConfig stores logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("mods.root", internal.DefaultModsDir)
	v.SetDefault("mods.manifestName", internal.DefaultManifestName)
	v.SetDefault("mods.ignoreFile", internal.DefaultIgnoreFile)
	v.SetDefault("mods.maxComponents", internal.DefaultMaxComponents)
	v.SetDefault("mods.bucketCount", internal.DefaultBucketCount)
	v.SetDefault("mods.workers", 0)
	v.SetDefault("log.level", internal.DefaultLogLevel)
	v.SetDefault("log.pretty", false)

	v.AutomaticEnv()                                   // Read in environment variables that match
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // mods.root becomes MODS_ROOT

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults will be used.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return &AppConfig, nil
}

// Validate rejects values the index cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Mods.Root) == "" {
		return fmt.Errorf("mods.root cannot be empty")
	}
	if c.Mods.MaxComponents <= 0 {
		return fmt.Errorf("mods.maxComponents must be positive, got %d", c.Mods.MaxComponents)
	}
	if c.Mods.BucketCount <= 0 {
		return fmt.Errorf("mods.bucketCount must be positive, got %d", c.Mods.BucketCount)
	}
	if c.Mods.Workers < 0 {
		return fmt.Errorf("mods.workers cannot be negative, got %d", c.Mods.Workers)
	}
	return nil
}
