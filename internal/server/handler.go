package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/zorak1103/conman/internal/docker"
	"github.com/zorak1103/conman/internal/logger"
	"github.com/zorak1103/conman/internal/notification"
	"github.com/zorak1103/conman/internal/workload"
)

const (
	kindContainer = "container"
	kindService   = "service"
)

type handler struct {
	docker     docker.Client
	notifier   ActionNotifier
	log        zerolog.Logger
	logTimeout time.Duration
}

func (h *handler) listContainers(c *fiber.Ctx) error {
	containers, err := h.docker.ListContainers(c.UserContext(), docker.FilterOptions{IncludeAll: true})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	out := make([]workload.Workload, 0, len(containers))
	for _, ctr := range containers {
		out = append(out, containerWorkload(ctr))
	}
	return c.JSON(out)
}

func (h *handler) listServices(c *fiber.Ctx) error {
	services, err := h.docker.ListServices(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	out := make([]workload.Workload, 0, len(services))
	for _, svc := range services {
		out = append(out, serviceWorkload(svc))
	}
	return c.JSON(out)
}

func (h *handler) removeContainer(c *fiber.Ctx) error {
	return h.remove(c, kindContainer, h.docker.RemoveContainer)
}

func (h *handler) removeService(c *fiber.Ctx) error {
	return h.remove(c, kindService, h.docker.RemoveService)
}

func (h *handler) remove(c *fiber.Ctx, kind string, removeFn func(ctx context.Context, id string) error) error {
	id := c.Params("id")
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, kind+" ID is required")
	}

	err := removeFn(c.UserContext(), id)
	h.notify(notification.ActionEvent{
		Action:     workload.ActionRemove,
		Kind:       kind,
		ID:         id,
		RemoteAddr: c.IP(),
		Time:       time.Now(),
		Err:        err,
	})

	if err != nil {
		return toHTTPError(err)
	}

	h.log.Info().Str(logger.FieldWorkload, id).Str("kind", kind).Msg("workload removed")
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) downloadContainerLog(c *fiber.Ctx) error {
	id := c.Params("id")

	ctx, cancel := context.WithTimeout(c.UserContext(), h.logTimeout)
	defer cancel()

	var buf bytes.Buffer
	if err := h.docker.WriteContainerLog(ctx, id, &buf); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fiber.NewError(fiber.StatusGatewayTimeout, fmt.Sprintf("log download for %s timed out", id))
		}
		return toHTTPError(err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.log"`, url.PathEscape(id)))
	return c.Send(buf.Bytes())
}

func (h *handler) notify(event notification.ActionEvent) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.SendAction(event); err != nil {
		h.log.Warn().Err(err).Str(logger.FieldWorkload, event.ID).Msg("failed to send action notification")
	}
}

func toHTTPError(err error) error {
	if errors.Is(err, docker.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
