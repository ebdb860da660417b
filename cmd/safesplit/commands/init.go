package commands

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lightningwave/safesplit-sub000/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a configuration file",
	Long: `Initialize a SafeSplit configuration file with generated key material.

By default, the configuration file is created at
$XDG_CONFIG_HOME/safesplit/config.yaml. Use --config to specify a custom
path.

A random JWT signing secret and a random master key are generated and
written into the file. The file is created with mode 0600; keep it
private.

Examples:
  # Initialize with default location
  safesplit init

  # Initialize with custom path
  safesplit init --config /etc/safesplit/config.yaml

  # Force overwrite existing config
  safesplit init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
	}

	cfg := config.GetDefaultConfig()

	secret, err := randomBase64(48)
	if err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	cfg.JWT.Secret = secret

	masterKey, err := randomBase64(32)
	if err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	cfg.MasterKey = masterKey

	if err := config.SaveConfig(cfg, configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the server with: safesplit start")
	fmt.Println("\nSecurity note:")
	fmt.Println("  The file contains the JWT secret and the master key that")
	fmt.Println("  protects every sealed file. Back it up and keep it private.")
	fmt.Println("  Both values can also be supplied via environment:")
	fmt.Println("    SAFESPLIT_JWT_SECRET, SAFESPLIT_MASTER_KEY")

	return nil
}

// randomBase64 returns n random bytes encoded as standard base64.
func randomBase64(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
