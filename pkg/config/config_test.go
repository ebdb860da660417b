package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/store"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected INFO level, got %s", cfg.Logging.Level)
	}
	if cfg.Database.Type != store.DatabaseTypeSQLite {
		t.Errorf("Expected sqlite database, got %s", cfg.Database.Type)
	}
	if cfg.Security.MaxAttempts != 5 {
		t.Errorf("Expected 5 max attempts, got %d", cfg.Security.MaxAttempts)
	}
	if cfg.Security.LockoutDuration != 15*time.Minute {
		t.Errorf("Expected 15m lockout, got %s", cfg.Security.LockoutDuration)
	}
	if cfg.Security.ChallengeTTL != 10*time.Minute {
		t.Errorf("Expected 10m challenge TTL, got %s", cfg.Security.ChallengeTTL)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected 30s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Default config failed validation: %v", err)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: debug
  format: json
server:
  port: 9443
security:
  max_attempts: 3
  lockout_duration: 5m
database:
  type: sqlite
  sqlite:
    path: ` + filepath.Join(dir, "vault.db") + `
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized DEBUG, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected json format, got %s", cfg.Logging.Format)
	}
	if cfg.Server.Port != 9443 {
		t.Errorf("Expected port 9443, got %d", cfg.Server.Port)
	}
	if cfg.Security.MaxAttempts != 3 {
		t.Errorf("Expected 3 max attempts, got %d", cfg.Security.MaxAttempts)
	}
	if cfg.Security.LockoutDuration != 5*time.Minute {
		t.Errorf("Expected 5m lockout, got %s", cfg.Security.LockoutDuration)
	}
	// Unset values fall back to defaults
	if cfg.Security.ChallengeTTL != 10*time.Minute {
		t.Errorf("Expected default challenge TTL, got %s", cfg.Security.ChallengeTTL)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Security.MaxAttempts != 5 {
		t.Errorf("Expected default max attempts, got %d", cfg.Security.MaxAttempts)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
security:
  max_attempts: -1
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected validation error for negative max_attempts")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Server.Port = 9090
	cfg.Security.MaxAttempts = 7
	cfg.MasterKey = base64.StdEncoding.EncodeToString(make([]byte, 32))

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Saved config missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600 permissions, got %o", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", loaded.Server.Port)
	}
	if loaded.Security.MaxAttempts != 7 {
		t.Errorf("Expected 7 max attempts, got %d", loaded.Security.MaxAttempts)
	}
	if _, err := loaded.MasterKeyBytes(); err != nil {
		t.Errorf("MasterKeyBytes() error: %v", err)
	}
}

func TestMasterKeyBytes(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid 32 bytes", base64.StdEncoding.EncodeToString(make([]byte, 32)), false},
		{"empty", "", true},
		{"not base64", "!!!not-base64!!!", true},
		{"wrong length", base64.StdEncoding.EncodeToString(make([]byte, 16)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{MasterKey: tt.key}
			_, err := cfg.MasterKeyBytes()
			if (err != nil) != tt.wantErr {
				t.Errorf("MasterKeyBytes() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
