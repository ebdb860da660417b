package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_InvalidServerPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Port = 70000 // Out of range

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for port out of range")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Errorf("Expected 'max' validation error, got: %v", err)
	}
}

func TestValidate_MaxAttemptsTooLow(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Security.MaxAttempts = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for negative max attempts")
	}
}

func TestValidate_MinPasswordLengthFloor(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Security.MinPasswordLength = 4 // Below the hard floor of 6

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for min password length below 6")
	}
	if !strings.Contains(err.Error(), "min") {
		t.Errorf("Expected 'min' validation error, got: %v", err)
	}

	cfg.Security.MinPasswordLength = 12
	if err := Validate(cfg); err != nil {
		t.Errorf("Expected raised floor to pass validation, got: %v", err)
	}
}

func TestValidate_LockoutDurationNegative(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Security.LockoutDuration = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for negative lockout duration")
	}
}

func TestValidate_LogLevelNormalization(t *testing.T) {
	// Validation accepts both cases; normalization happens in ApplyDefaults.
	for _, level := range []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"} {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level

		if err := Validate(cfg); err != nil {
			t.Errorf("Validation failed for level %q: %v", level, err)
		}
	}

	cfg := &Config{Logging: LoggingConfig{Level: "info"}}
	ApplyDefaults(cfg)
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected ApplyDefaults to normalize 'info' to 'INFO', got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_MinPasswordLength(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Security.MinPasswordLength != 6 {
		t.Errorf("Expected default min password length 6, got %d", cfg.Security.MinPasswordLength)
	}
}
