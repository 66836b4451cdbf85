package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zorak1103/conman/internal/templates"
)

var (
	force bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sample configuration in the current directory",
	Long: `Init writes the files conman reads on startup:
  - config.yaml (sample configuration with every key and its default)
  - .env (environment variable template)

Existing files are kept unless --force is given.`,
	Example: `  # Initialize in current directory
  conman init

  # Force overwrite existing files
  conman init --force`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, "🔧 Initializing conman...")

		files := []struct {
			name    string
			content []byte
		}{
			{"config.yaml", templates.ConfigYAML},
			{".env", templates.EnvFile},
		}

		for _, f := range files {
			if _, err := os.Stat(f.name); err == nil && !force {
				_, _ = fmt.Fprintf(out, "⚠️  Skipping %s (already exists, use --force to overwrite)\n", f.name)
				continue
			}

			if err := os.WriteFile(f.name, f.content, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", f.name, err)
			}
			_, _ = fmt.Fprintf(out, "✅ Created %s\n", f.name)
		}

		_, _ = fmt.Fprintln(out, "\n📝 Next steps:")
		_, _ = fmt.Fprintln(out, "   1. Run 'conman serve' on a Docker host")
		_, _ = fmt.Fprintln(out, "   2. Point client.base_url at it and run 'conman watch'")
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration files")
}
