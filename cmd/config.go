package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zorak1103/conman/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the effective configuration",
	Long: `Display the effective configuration that conman will use at runtime.

This shows the merged configuration from:
  1. Default values
  2. Configuration file (config.yaml)
  3. Environment variables (CONMAN_*, highest priority)

Notification credentials are masked.`,
	Example: `  # Show current configuration
  conman config

  # Show with custom config file
  conman config --config /etc/conman/config.yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		printConfig(cmd.OutOrStdout(), c)
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(configCmd)
}

// printConfig writes the effective configuration. Write errors are not actionable here.
func printConfig(out io.Writer, c *config.Config) {
	source := c.ConfigFilePath
	if source == "" {
		source = "(defaults/environment)"
	}

	p := func(format string, args ...any) {
		_, _ = fmt.Fprintf(out, format, args...)
	}

	p("=== conman Effective Configuration ===\n")
	p("Source: %s\n\n", source)

	p("🌐 Server:\n")
	p("   Listen:          %s\n\n", c.Server.Listen)

	p("🐳 Docker:\n")
	p("   Socket Path:     %s\n\n", c.Docker.SocketPath)

	p("📡 Client:\n")
	p("   Base URL:        %s\n", c.Client.BaseURL)
	p("   Containers Path: %s\n", c.Client.ContainersPath)
	p("   Services Path:   %s\n", c.Client.ServicesPath)
	p("   Poll Interval:   %s\n", c.Client.PollInterval)
	p("   Request Timeout: %s\n\n", c.Client.RequestTimeout)

	p("⚙️  Settings:\n")
	p("   File:            %s\n\n", c.Settings.File)

	p("🔔 Notification:\n")
	p("   Enabled:         %v\n", c.Notification.Enabled)
	p("   Shoutrrr URL:    %s\n\n", maskShoutrrrURL(c.Notification.ShoutrrURL))

	p("📝 Logging:\n")
	p("   Level:           %s\n", c.Log.Level)
	p("   Format:          %s\n", c.Log.Format)
	if c.Log.File != "" {
		p("   File:            %s\n", c.Log.File)
	}
}

// maskShoutrrrURL masks sensitive parts of Shoutrrr URL
func maskShoutrrrURL(url string) string {
	if url == "" {
		return "❌ Not configured"
	}

	parts := strings.SplitN(url, "://", 2)
	if len(parts) != 2 {
		return "✅ Configured (invalid format)"
	}

	return fmt.Sprintf("✅ Configured (%s://***)", parts[0])
}
