package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zorak1103/conman/internal/settings"
)

// settingNames maps CLI names to persisted keys.
var settingNames = map[string]string{
	"auto-update": settings.KeyAutoUpdate,
	"swarm-mode":  settings.KeySwarmMode,
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect or change the persisted dashboard settings",
	Long: `Settings manages the dashboard settings stored in settings.file.

  auto-update   refresh the workload list periodically
  swarm-mode    show swarm services instead of containers`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the persisted dashboard settings",
	Example: `  conman settings show`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}

		store, err := openSettings(c)
		if err != nil {
			return err
		}
		s, err := settings.Load(store)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Settings file: %s\n", store.Path())
		_, _ = fmt.Fprintf(out, "auto-update:   %v\n", s.AutoUpdate)
		_, _ = fmt.Fprintf(out, "swarm-mode:    %v\n", s.SwarmMode)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <auto-update|swarm-mode> <true|false>",
	Short: "Change a persisted dashboard setting",
	Example: `  # Start future dashboards in swarm mode
  conman settings set swarm-mode true`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, ok := settingNames[args[0]]
		if !ok {
			return fmt.Errorf("unknown setting %q: expected auto-update or swarm-mode", args[0])
		}
		value, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid value %q for %s: expected true or false", args[1], args[0])
		}

		c, err := requireConfig()
		if err != nil {
			return err
		}
		store, err := openSettings(c)
		if err != nil {
			return err
		}

		if err := store.Set(key, value); err != nil {
			return fmt.Errorf("failed to store %s: %w", args[0], err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✅ %s = %v (%s)\n", args[0], value, store.Path())
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}
