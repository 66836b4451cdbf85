// Package docker provides a client for interacting with the Docker API.
package docker

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/swarm"
	"github.com/docker/docker/client"

	apperrors "github.com/zorak1103/conman/internal/errors"
)

// Common errors
var (
	ErrConnectionFailed = errors.New("docker connection failed")
	ErrNotFound         = errors.New("workload not found")
)

// Client defines the interface for Docker client operations.
// All methods accept context.Context for cancellation and timeout support.
type Client interface {
	// Ping verifies the Docker daemon is accessible. Returns error if connection fails.
	Ping(ctx context.Context) error
	// Close closes the Docker client connection and releases resources.
	Close() error

	// ListContainers lists containers matching the provided filter options.
	ListContainers(ctx context.Context, opts FilterOptions) ([]Container, error)
	// ListServices lists swarm services including their task counts.
	ListServices(ctx context.Context) ([]Service, error)
	// RemoveContainer removes a stopped container. Returns ErrNotFound for unknown IDs.
	RemoveContainer(ctx context.Context, containerID string) error
	// RemoveService removes a swarm service. Returns ErrNotFound for unknown IDs.
	RemoveService(ctx context.Context, serviceID string) error
	// WriteContainerLog writes the container's stdout and stderr as plain text to w.
	WriteContainerLog(ctx context.Context, containerID string, w io.Writer) error
}

// engineAPI is the subset of the Docker SDK client used by this package
type engineAPI interface {
	Ping(ctx context.Context) (types.Ping, error)
	Close() error
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ServiceList(ctx context.Context, options types.ServiceListOptions) ([]swarm.Service, error)
	ServiceRemove(ctx context.Context, serviceID string) error
}

// Compile-time verification that the SDK client satisfies engineAPI
var _ engineAPI = (*client.Client)(nil)

// dockerClient adapts the Docker SDK client to our interface
type dockerClient struct {
	cli        engineAPI
	socketPath string
}

// Compile-time verification that dockerClient implements Client
var _ Client = (*dockerClient)(nil)

// NewClient connects to the Docker daemon at socketPath (or default if empty).
func NewClient(socketPath string) (Client, error) {
	opts := []client.Opt{
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	}

	if socketPath != "" {
		opts = append(opts, client.WithHost(socketPath))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client for socket %s: %w", socketPath, err)
	}

	return &dockerClient{cli: cli, socketPath: socketPath}, nil
}

// newClientWithEngine is used for testing with fake engine implementations.
func newClientWithEngine(cli engineAPI, socketPath string) *dockerClient {
	return &dockerClient{cli: cli, socketPath: socketPath}
}

func (c *dockerClient) wrap(operation string, err error) error {
	return &apperrors.DockerConnectionError{SocketPath: c.socketPath, Operation: operation, Err: err}
}

func (c *dockerClient) Ping(ctx context.Context) error {
	if _, err := c.cli.Ping(ctx); err != nil {
		return c.wrap("Ping", fmt.Errorf("%w: %w", ErrConnectionFailed, err))
	}
	return nil
}

func (c *dockerClient) Close() error {
	return c.cli.Close()
}

func (c *dockerClient) ListContainers(ctx context.Context, opts FilterOptions) ([]Container, error) {
	containers, err := c.cli.ContainerList(ctx, container.ListOptions{All: opts.IncludeAll})
	if err != nil {
		return nil, c.wrap("ContainerList", err)
	}

	result := make([]Container, 0, len(containers))
	for _, ctr := range containers {
		// Extract container name (remove leading slash)
		name := ""
		if len(ctr.Names) > 0 {
			name = ctr.Names[0]
			if name != "" && name[0] == '/' {
				name = name[1:]
			}
		}

		result = append(result, Container{
			ID:     ctr.ID,
			Name:   name,
			State:  string(ctr.State),
			Status: ctr.Status,
			Image:  ctr.Image,
		})
	}

	return result, nil
}

func (c *dockerClient) ListServices(ctx context.Context) ([]Service, error) {
	services, err := c.cli.ServiceList(ctx, types.ServiceListOptions{Status: true})
	if err != nil {
		return nil, c.wrap("ServiceList", err)
	}

	result := make([]Service, 0, len(services))
	for _, svc := range services {
		s := Service{
			ID:   svc.ID,
			Name: svc.Spec.Name,
		}
		if spec := svc.Spec.TaskTemplate.ContainerSpec; spec != nil {
			s.Image = spec.Image
		}
		if svc.ServiceStatus != nil {
			s.HasStatus = true
			s.RunningTasks = svc.ServiceStatus.RunningTasks
			s.DesiredTasks = svc.ServiceStatus.DesiredTasks
		}
		result = append(result, s)
	}
	return result, nil
}

func (c *dockerClient) RemoveContainer(ctx context.Context, containerID string) error {
	if err := c.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{}); err != nil {
		return c.classify("ContainerRemove", containerID, err)
	}
	return nil
}

func (c *dockerClient) RemoveService(ctx context.Context, serviceID string) error {
	if err := c.cli.ServiceRemove(ctx, serviceID); err != nil {
		return c.classify("ServiceRemove", serviceID, err)
	}
	return nil
}

func (c *dockerClient) WriteContainerLog(ctx context.Context, containerID string, w io.Writer) error {
	reader, err := c.cli.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return c.classify("ContainerLogs", containerID, err)
	}
	// Stream is consumed before returning; close error not actionable
	defer func() { _ = reader.Close() }()

	if err := copyLogStream(w, reader); err != nil {
		return fmt.Errorf("failed to read logs for container %s: %w", containerID, err)
	}
	return nil
}

func (c *dockerClient) classify(operation, id string, err error) error {
	if client.IsErrNotFound(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c.wrap(operation, err)
}
