package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	HgPath       string `mapstructure:"hg_path"`
	Encoding     string `mapstructure:"encoding"`
	TempDir      string `mapstructure:"temp_dir"`
	MaxArgLength int    `mapstructure:"max_arg_length"`
	Role         string `mapstructure:"role"`
	Model        string `mapstructure:"model"`
	APIKey       string `mapstructure:"api_key"`
	APIBase      string `mapstructure:"api_base"`
}

const (
	DefaultHgPath     = "hg"
	DefaultEncoding   = "utf-8"
	DefaultRole       = "Developer"
	DefaultModel      = "gpt-4o-mini"
	DefaultConfigName = "config"
	DefaultConfigDir  = "hgc"
	EnvPrefix         = "HGC"
)

// Keys that may be changed through `hgc config set`.
var settableKeys = []string{
	"hg_path",
	"encoding",
	"temp_dir",
	"max_arg_length",
	"role",
	"model",
	"api_key",
	"api_base",
}

var suggestedModels = []string{
	"gpt-4o-mini",
	"gpt-4o",
	"gpt-4.1",
}

// ConfigDir returns the directory holding the hgc configuration file.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, DefaultConfigDir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".config", DefaultConfigDir), nil
}

func setDefaults() {
	viper.SetDefault("hg_path", DefaultHgPath)
	viper.SetDefault("encoding", DefaultEncoding)
	viper.SetDefault("temp_dir", "")
	viper.SetDefault("max_arg_length", 0)
	viper.SetDefault("role", DefaultRole)
	viper.SetDefault("model", DefaultModel)
	viper.SetDefault("api_key", "")
	viper.SetDefault("api_base", "")
}

// InitConfig loads the configuration file, creating it with defaults when missing.
func InitConfig(cfgFile string) error {
	configPath := cfgFile
	if configPath == "" {
		dir, err := ConfigDir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(dir, DefaultConfigName+".yaml")
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read configuration file: %w", err)
		}

		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("failed to create configuration directory: %w", err)
		}
		if err := viper.WriteConfigAs(configPath); err != nil {
			return fmt.Errorf("failed to write configuration file: %w", err)
		}
	}

	// The file may hold an API key.
	if err := os.Chmod(configPath, 0600); err != nil {
		return fmt.Errorf("failed to restrict configuration file permissions: %w", err)
	}
	return nil
}

// GetConfig returns the current configuration
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if cfg.HgPath == "" {
		cfg.HgPath = DefaultHgPath
	}
	if cfg.Encoding == "" {
		cfg.Encoding = DefaultEncoding
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.MaxArgLength < 0 {
		return nil, fmt.Errorf("max_arg_length must not be negative: %d", cfg.MaxArgLength)
	}
	return cfg, nil
}

// SetConfigValue sets a configuration value in memory
func SetConfigValue(key string, value interface{}) {
	viper.Set(key, value)
}

// SaveConfig persists the current configuration
func SaveConfig() error {
	return viper.WriteConfig()
}

// IsSettableKey reports whether key can be changed with `hgc config set`.
func IsSettableKey(key string) bool {
	for _, k := range settableKeys {
		if k == key {
			return true
		}
	}
	return false
}

// SettableKeys returns the keys accepted by `hgc config set`.
func SettableKeys() []string {
	return append([]string(nil), settableKeys...)
}

// GetSuggestedModels returns the suggested LLM models
func GetSuggestedModels() []string {
	return suggestedModels
}
