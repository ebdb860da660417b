package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Lightningwave/safesplit-sub000/internal/logger"
	"github.com/Lightningwave/safesplit-sub000/pkg/api"
	"github.com/Lightningwave/safesplit-sub000/pkg/api/auth"
	"github.com/Lightningwave/safesplit-sub000/pkg/api/handlers"
	"github.com/Lightningwave/safesplit-sub000/pkg/config"
	"github.com/Lightningwave/safesplit-sub000/pkg/metrics"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/artifact"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/gate"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/secondfactor"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the SafeSplit server",
	Long: `Start the SafeSplit server with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/safesplit/config.yaml.

Examples:
  # Start with default config location
  safesplit start

  # Start with custom config
  safesplit start --config /etc/safesplit/config.yaml

  # Start with environment variable overrides
  SAFESPLIT_LOGGING_LEVEL=DEBUG safesplit start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}
	models.SetMinPasswordLength(cfg.Security.MinPasswordLength)

	masterKey, err := cfg.MasterKeyBytes()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Configuration loaded",
		"level", cfg.Logging.Level,
		"database", string(cfg.Database.Type))

	vaultStore, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := vaultStore.Close(); err != nil {
			logger.Error("Store close error", "error", err)
		}
	}()

	if err := reportSuperAdminBootstrap(ctx, vaultStore); err != nil {
		return err
	}

	artifacts, err := artifact.NewWithPath(cfg.Artifacts.Path)
	if err != nil {
		return fmt.Errorf("failed to open artifact store: %w", err)
	}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:               cfg.JWT.Secret,
		AccessTokenDuration:  cfg.JWT.AccessTokenDuration,
		RefreshTokenDuration: cfg.JWT.RefreshTokenDuration,
	})
	if err != nil {
		return fmt.Errorf("failed to create JWT service: %w", err)
	}

	second := secondfactor.NewService(
		vaultStore,
		handlers.NewContactResolver(vaultStore),
		nil, // log-only delivery; swap in an SMTP sender when wired up
		cfg.Security.ChallengeTTL,
	)
	accessGate := gate.New(gate.NewLedger(vaultStore, gate.Policy{
		MaxAttempts:     cfg.Security.MaxAttempts,
		LockoutDuration: cfg.Security.LockoutDuration,
		ChallengeTTL:    cfg.Security.ChallengeTTL,
	}), second)

	metrics.Register(nil)

	if !cfg.Server.IsEnabled() {
		return fmt.Errorf("server is disabled in configuration; nothing to do")
	}

	server := api.NewServer(cfg.Server, api.RouterDeps{
		Store:      vaultStore,
		JWTService: jwtService,
		Gate:       accessGate,
		Artifacts:  artifacts,
		MasterKey:  masterKey,
	})

	logger.Info("SafeSplit starting", "version", Version, "port", server.Port())
	return server.Start(ctx)
}
