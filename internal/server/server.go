// Package server exposes the Docker engine as the workload API consumed by the dashboard.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/zorak1103/conman/internal/docker"
	"github.com/zorak1103/conman/internal/logger"
	"github.com/zorak1103/conman/internal/notification"
	"github.com/zorak1103/conman/internal/version"
)

// Route prefixes of the workload API.
const (
	ContainersRoute = "/api/containers"
	ServicesRoute   = "/api/services"
)

const (
	defaultLogTimeout      = 5 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// ActionNotifier is informed about every executed action.
type ActionNotifier interface {
	SendAction(event notification.ActionEvent) error
}

// Options configures a Server.
type Options struct {
	Listen     string
	Docker     docker.Client
	Notifier   ActionNotifier // optional
	Logger     zerolog.Logger
	LogTimeout time.Duration // bound for log downloads; defaults to 5s
}

// Server is the fiber application serving the workload API.
type Server struct {
	app    *fiber.App
	listen string
	log    zerolog.Logger
}

// New builds the fiber app and registers all routes.
func New(opts Options) (*Server, error) {
	if opts.Docker == nil {
		return nil, errors.New("server: docker client is required")
	}
	if opts.LogTimeout <= 0 {
		opts.LogTimeout = defaultLogTimeout
	}

	log := logger.Component(opts.Logger, "server")

	app := fiber.New(fiber.Config{
		AppName:               "conman " + version.GetVersion(),
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(auditMiddleware(log))

	h := &handler{
		docker:     opts.Docker,
		notifier:   opts.Notifier,
		log:        log,
		logTimeout: opts.LogTimeout,
	}

	containers := app.Group(ContainersRoute)
	containers.Get("/", h.listContainers)
	containers.Delete("/:id", h.removeContainer)
	containers.Get("/:id/log/download", h.downloadContainerLog)

	services := app.Group(ServicesRoute)
	services.Get("/", h.listServices)
	services.Delete("/:id", h.removeService)

	return &Server{app: app, listen: opts.Listen, log: log}, nil
}

// App exposes the underlying fiber app (used by tests via app.Test).
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("listen", s.listen).Msg("workload API listening")
		errCh <- s.app.Listen(s.listen)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed on %s: %w", s.listen, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info().Msg("workload API stopped")
	return nil
}

// errorHandler renders every error as {"error": "..."}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// auditMiddleware writes one line per request: remote address, method, path, status.
func auditMiddleware(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Returned errors are rendered by errorHandler after this middleware
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		log.Info().
			Str("remote", c.IP()).
			Str(logger.FieldMethod, c.Method()).
			Str("path", c.Path()).
			Int(logger.FieldStatus, status).
			Int64(logger.FieldDuration, time.Since(start).Milliseconds()).
			Msg("AUDIT")
		return err
	}
}
