// Package cmd implements the CLI commands.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zorak1103/conman/internal/config"
	"github.com/zorak1103/conman/internal/logger"
	"github.com/zorak1103/conman/internal/version"
)

var (
	cfgFile       string
	verbose       bool
	cfg           *config.Config
	errConfigLoad error
)

var rootCmd = &cobra.Command{
	Use:   "conman",
	Short: "Container manager dashboard",
	Long: `conman lists and manages Docker containers and swarm services.

It consists of two halves:
  - conman serve: a Docker-backed HTTP API listing workloads and exposing
    their actions (remove, log download) as links
  - conman watch / conman ls: a client that keeps the workload list in sync
    with that API and shows it as an interactive dashboard or a table

Dashboard settings (auto-update, swarm mode) persist across sessions.`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		skipConfig := cmd.Name() == "init" || cmd.Name() == "help" || cmd.Name() == "version"
		if skipConfig {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			// Stored, not thrown: commands call requireConfig when they need it
			errConfigLoad = err
			if verbose {
				fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
			}
			return nil
		}
		errConfigLoad = nil

		if verbose {
			cfg.Log.Level = zerolog.LevelDebugValue
			source := cfg.ConfigFilePath
			if source == "" {
				source = "(defaults/environment)"
			}
			fmt.Fprintf(os.Stderr, "Loaded configuration from: %s\n", source)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

// GetConfig returns the loaded configuration or nil if not loaded.
// Must be called after rootCmd.PersistentPreRunE has executed.
func GetConfig() *config.Config {
	return cfg
}

// GetConfigLoadError returns any error encountered during config loading.
func GetConfigLoadError() error {
	return errConfigLoad
}

// IsVerbose returns whether verbose mode is enabled via the -v flag.
func IsVerbose() bool {
	return verbose
}

// requireConfig returns the loaded configuration or a user-facing error.
func requireConfig() (*config.Config, error) {
	if errConfigLoad != nil {
		return nil, fmt.Errorf("invalid configuration: %w\n\nRun 'conman init' to create a sample config.yaml", errConfigLoad)
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded\n\nRun 'conman init' to create a sample config.yaml")
	}
	return cfg, nil
}

// newLogger builds the process logger. fallback receives log output unless log.file is set.
func newLogger(c *config.Config, fallback io.Writer) (zerolog.Logger, io.Closer, error) {
	log, closer, err := logger.New(c.Log, fallback)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return log, closer, nil
}
