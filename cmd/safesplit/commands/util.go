package commands

import (
	"context"
	"fmt"

	"github.com/Lightningwave/safesplit-sub000/internal/logger"
	"github.com/Lightningwave/safesplit-sub000/pkg/config"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/store"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// openStore loads the configuration and connects to the metadata store.
// The caller owns the returned store and must Close it.
func openStore() (*config.Config, store.Store, error) {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return nil, nil, err
	}
	models.SetMinPasswordLength(cfg.Security.MinPasswordLength)
	s, err := store.New(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	return cfg, s, nil
}

// reportSuperAdminBootstrap prints the generated bootstrap password, once,
// when a fresh super admin was created.
func reportSuperAdminBootstrap(ctx context.Context, s store.Store) error {
	password, err := s.EnsureSuperAdmin(ctx)
	if err != nil {
		return fmt.Errorf("failed to ensure super admin: %w", err)
	}
	if password != "" {
		fmt.Println("=========================================================")
		fmt.Println("  First run: a super admin account has been created")
		fmt.Println("    username: superadmin")
		fmt.Printf("    password: %s\n", password)
		fmt.Println("  This password is shown ONCE. Change it after login.")
		fmt.Println("=========================================================")
	}
	return nil
}
