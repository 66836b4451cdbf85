package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zorak1103/conman/internal/settings"
	"github.com/zorak1103/conman/internal/workload"
)

var (
	lsFilter string
	lsSwarm  bool
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List workloads once",
	Long: `Ls fetches the workload list once and prints it as a table.

The mode follows the persisted swarm-mode setting; --swarm lists services for
this invocation only, without changing the stored setting.`,
	Example: `  # List containers (or services, if swarm mode is stored)
  conman ls

  # List running workloads whose name, image or state contains "web"
  conman ls --filter web

  # List swarm services
  conman ls --swarm`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}

		log, closer, err := newLogger(c, os.Stderr)
		if err != nil {
			return err
		}
		defer func() { _ = closer.Close() }()

		fileStore, err := openSettings(c)
		if err != nil {
			return err
		}
		stored, err := settings.Load(fileStore)
		if err != nil {
			return fmt.Errorf("failed to load dashboard settings: %w", err)
		}

		// One-shot listing: nothing is persisted
		store := settings.NewMemoryStore()
		stored.SwarmMode = stored.SwarmMode || lsSwarm
		if err := settings.Save(store, stored); err != nil {
			return err
		}

		ctrl, err := buildController(c, store, log)
		if err != nil {
			return err
		}
		defer ctrl.poller.Close()

		if err := ctrl.poller.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("failed to list workloads from %s: %w", c.Client.BaseURL, err)
		}

		ctrl.state.SetQuery(lsFilter)
		writeWorkloadTable(cmd.OutOrStdout(), ctrl.state.Filtered())
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(lsCmd)

	lsCmd.Flags().StringVar(&lsFilter, "filter", "", "only show workloads whose name, image or state contains this text")
	lsCmd.Flags().BoolVar(&lsSwarm, "swarm", false, "list swarm services instead of containers")
}

// writeWorkloadTable prints records as an aligned table.
// Errors writing to stdout are not actionable in CLI context.
func writeWorkloadTable(out io.Writer, records []workload.Workload) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(out, "No workloads found")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tIMAGE\tSTATE\tSTATUS\tACTIONS")
	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ShortID(), r.Name, r.Image, r.State, dash(r.Status), dash(availableActions(r)))
	}
	_ = w.Flush()
}

func availableActions(w workload.Workload) string {
	var actions []string
	for _, action := range []string{workload.ActionRemove, workload.ActionDownloadLog} {
		if w.Links.Get(action).Valid() {
			actions = append(actions, action)
		}
	}
	return strings.Join(actions, ",")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
