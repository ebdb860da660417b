package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/gate"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/store"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields. Zero values are replaced; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	cfg.Database.ApplyDefaults()
	applySecurityDefaults(&cfg.Security)
	applyArtifactsDefaults(&cfg.Artifacts)
	applyJWTDefaults(&cfg.JWT)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applySecurityDefaults sets the gate policy defaults.
func applySecurityDefaults(cfg *SecurityConfig) {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = gate.DefaultMaxAttempts
	}
	if cfg.LockoutDuration == 0 {
		cfg.LockoutDuration = gate.DefaultLockoutDuration
	}
	if cfg.ChallengeTTL == 0 {
		cfg.ChallengeTTL = gate.DefaultChallengeTTL
	}
	if cfg.MinPasswordLength == 0 {
		cfg.MinPasswordLength = models.MinPasswordLength
	}
}

// applyArtifactsDefaults places sealed blobs next to the database by
// default.
func applyArtifactsDefaults(cfg *ArtifactsConfig) {
	if cfg.Path == "" {
		cfg.Path = filepath.Join(getConfigDir(), "artifacts")
	}
}

// applyJWTDefaults sets token lifetime defaults. The secret has no
// default; it is generated by 'safesplit init'.
func applyJWTDefaults(cfg *JWTConfig) {
	if cfg.AccessTokenDuration == 0 {
		cfg.AccessTokenDuration = 15 * time.Minute
	}
	if cfg.RefreshTokenDuration == 0 {
		cfg.RefreshTokenDuration = 7 * 24 * time.Hour
	}
}

// GetDefaultConfig returns a configuration with all defaults applied.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Database: store.Config{
			Type: store.DatabaseTypeSQLite,
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// validate checks the tagged field rules across the whole config tree.
var validate = validator.New()

// Validate checks the configuration for values that cannot work. Field
// rules live in the validate tags on the config structs; the database
// settings get a backend-specific check on top.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg.Database.Validate()
}
