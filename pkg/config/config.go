// Package config loads the SafeSplit server configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (SAFESPLIT_*)
//  2. Configuration file (YAML)
//  3. Default values
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Lightningwave/safesplit-sub000/pkg/api"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/store"
)

// Config represents the SafeSplit server configuration.
//
// It covers the static aspects of the server: logging, the metadata
// database, the API server, the credential gate policy, artifact storage,
// and key material. Users, files, and shares are managed through the REST
// API and live in the database.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Database configures the metadata store (SQLite or PostgreSQL)
	Database store.Config `mapstructure:"database" yaml:"database"`

	// Server contains the REST API server configuration
	Server api.APIConfig `mapstructure:"server" yaml:"server"`

	// Security contains the credential gate policy
	Security SecurityConfig `mapstructure:"security" yaml:"security"`

	// Artifacts configures sealed payload storage
	Artifacts ArtifactsConfig `mapstructure:"artifacts" yaml:"artifacts"`

	// JWT contains token signing configuration
	JWT JWTConfig `mapstructure:"jwt" yaml:"jwt"`

	// MasterKey is the base64-encoded 32-byte key that wraps per-file
	// data keys. Generated by 'safesplit init'.
	// Override: SAFESPLIT_MASTER_KEY
	MasterKey string `mapstructure:"master_key" yaml:"master_key,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// SecurityConfig contains the credential gate policy.
type SecurityConfig struct {
	// MaxAttempts is the number of consecutive failures before lockout.
	// Default: 5
	MaxAttempts int `mapstructure:"max_attempts" validate:"required,min=1" yaml:"max_attempts"`

	// LockoutDuration is how long a locked principal stays locked.
	// Default: 15m
	LockoutDuration time.Duration `mapstructure:"lockout_duration" validate:"gte=0" yaml:"lockout_duration"`

	// ChallengeTTL is the lifetime of an issued one-time code.
	// Default: 10m
	ChallengeTTL time.Duration `mapstructure:"challenge_ttl" validate:"required,gt=0" yaml:"challenge_ttl"`

	// MinPasswordLength is the shortest password accepted for accounts
	// and shares. It can be raised but never lowered below 6.
	// Default: 6
	MinPasswordLength int `mapstructure:"min_password_length" validate:"required,min=6,max=72" yaml:"min_password_length"`
}

// ArtifactsConfig configures sealed payload storage.
type ArtifactsConfig struct {
	// Path is the directory holding sealed blobs.
	// Default: $XDG_CONFIG_HOME/safesplit/artifacts
	Path string `mapstructure:"path" validate:"required" yaml:"path"`
}

// JWTConfig contains token signing configuration.
type JWTConfig struct {
	// Secret is the HMAC signing key. Must be at least 32 characters.
	// Override: SAFESPLIT_JWT_SECRET
	Secret string `mapstructure:"secret" yaml:"secret,omitempty"`

	// AccessTokenDuration is the access token lifetime.
	// Default: 15m
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" validate:"required,gt=0" yaml:"access_token_duration"`

	// RefreshTokenDuration is the refresh token lifetime.
	// Default: 168h
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration" validate:"required,gt=0" yaml:"refresh_token_duration"`
}

// MasterKeyBytes decodes the configured master key.
func (c *Config) MasterKeyBytes() ([]byte, error) {
	if c.MasterKey == "" {
		return nil, fmt.Errorf("master_key is not set; run 'safesplit init' or set SAFESPLIT_MASTER_KEY")
	}
	key, err := base64.StdEncoding.DecodeString(c.MasterKey)
	if err != nil {
		return nil, fmt.Errorf("master_key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("master_key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages when the
// config file is missing.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  safesplit init\n\n"+
				"Or specify a custom config file:\n"+
				"  safesplit <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  safesplit init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path in YAML.
// The file is written 0600 since it carries the JWT secret and master key.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setupViper configures environment variable and config file handling.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the SAFESPLIT_ prefix and underscores
	// Example: SAFESPLIT_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("SAFESPLIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error).
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns the combined decode hook for custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	)
}

// durationDecodeHook converts strings like "30s", "5m", "1h" to
// time.Duration.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "safesplit")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "safesplit")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
