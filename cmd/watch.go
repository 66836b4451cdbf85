package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zorak1103/conman/internal/tui"
)

var (
	watchFilter string
	watchLogDir string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the interactive workload dashboard",
	Long: `Watch shows the containers (or swarm services) of the workload API in an
interactive dashboard and keeps the list fresh while auto-update is on.

Keys:
  /        edit the filter (matches name, image and state)
  esc      clear the filter
  a        toggle auto-update
  s        toggle swarm mode (services instead of containers)
  r        refresh now
  ↑/↓      select a workload
  x        remove the selected workload
  l        download the log of the selected container
  q        quit

Logs are written to log.file when configured and discarded otherwise.`,
	Example: `  # Open the dashboard
  conman watch

  # Start with a filter and store downloaded logs in /tmp/logs
  conman watch --filter nginx --log-dir /tmp/logs`,
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}

		// The dashboard owns the terminal; logs go to log.file or nowhere
		log, closer, err := newLogger(c, io.Discard)
		if err != nil {
			return err
		}
		defer func() { _ = closer.Close() }()

		store, err := openSettings(c)
		if err != nil {
			return err
		}

		ctrl, err := buildController(c, store, log)
		if err != nil {
			return err
		}
		defer ctrl.poller.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ctrl.state.SetQuery(watchFilter)
		if err := ctrl.poller.Start(ctx); err != nil {
			log.Debug().Err(err).Msg("initial refresh failed")
		}

		model := tui.NewModel(ctx, tui.Options{
			State:      ctrl.state,
			Controller: ctrl.poller,
			Actions:    ctrl.dispatcher,
			LogDir:     watchLogDir,
		})
		if err := tui.Run(ctx, model); err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchFilter, "filter", "", "initial filter query")
	watchCmd.Flags().StringVar(&watchLogDir, "log-dir", "./logs", "directory for downloaded container logs")
}
