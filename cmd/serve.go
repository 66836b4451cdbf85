package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zorak1103/conman/internal/docker"
	"github.com/zorak1103/conman/internal/notification"
	"github.com/zorak1103/conman/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workload API backed by the local Docker engine",
	Long: `Serve exposes the Docker engine as the workload API used by 'conman watch'
and 'conman ls':

  GET    /api/containers                    all containers
  DELETE /api/containers/:id                remove a stopped container
  GET    /api/containers/:id/log/download   container log as plain text
  GET    /api/services                      swarm services
  DELETE /api/services/:id                  remove a service

Every request is audit-logged. Executed actions are notified via Shoutrrr when
notification.enabled is set.`,
	Example: `  # Serve on the configured address (default :8080)
  conman serve

  # Serve on another port
  CONMAN_SERVER_LISTEN=:9090 conman serve`,
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}

		log, closer, err := newLogger(c, os.Stderr)
		if err != nil {
			return err
		}
		defer func() { _ = closer.Close() }()

		dockerClient, err := docker.NewClient(c.Docker.SocketPath)
		if err != nil {
			return err
		}
		defer func() { _ = dockerClient.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = dockerClient.Ping(pingCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("docker daemon not reachable at %s: %w", c.Docker.SocketPath, err)
		}

		notifier, err := notification.NewNotifier(c.Notification)
		if err != nil {
			return err
		}
		if notifier.IsEnabled() {
			log.Info().Msg("action notifications enabled")
		}

		srv, err := server.New(server.Options{
			Listen:   c.Server.Listen,
			Docker:   dockerClient,
			Notifier: notifier,
			Logger:   log,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.Run(ctx)
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(serveCmd)
}
