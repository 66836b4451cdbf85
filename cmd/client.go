package cmd

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zorak1103/conman/internal/config"
	"github.com/zorak1103/conman/internal/dashboard"
	"github.com/zorak1103/conman/internal/repository"
	"github.com/zorak1103/conman/internal/settings"
)

// controller bundles the client-side synchronization parts used by watch and ls.
type controller struct {
	state      *dashboard.State
	poller     *dashboard.Poller
	dispatcher *dashboard.Dispatcher
	store      settings.Store
}

// buildController wires repository, settings store, state, poller and dispatcher from
// configuration. Persisted settings seed the initial state.
func buildController(c *config.Config, store settings.Store, log zerolog.Logger) (*controller, error) {
	repo, err := repository.New(repository.Options{
		BaseURL:        c.Client.BaseURL,
		ContainersPath: c.Client.ContainersPath,
		ServicesPath:   c.Client.ServicesPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create workload API client: %w", err)
	}

	initial, err := settings.Load(store)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard settings: %w", err)
	}

	state := dashboard.NewState(initial)
	poller := dashboard.NewPoller(state, repo, store, dashboard.PollerConfig{
		Interval: c.Client.PollInterval,
		Timeout:  c.Client.RequestTimeout,
		Logger:   log,
	})
	dispatcher := dashboard.NewDispatcher(state, repo, poller, c.Client.RequestTimeout, log)

	return &controller{state: state, poller: poller, dispatcher: dispatcher, store: store}, nil
}

// openSettings opens the configured settings file.
func openSettings(c *config.Config) (*settings.FileStore, error) {
	store, err := settings.OpenFile(c.Settings.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings file %s: %w", c.Settings.File, err)
	}
	return store, nil
}
