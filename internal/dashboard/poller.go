package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zorak1103/conman/internal/logger"
	"github.com/zorak1103/conman/internal/repository"
	"github.com/zorak1103/conman/internal/settings"
	"github.com/zorak1103/conman/internal/workload"
)

// Default timing used when PollerConfig leaves a field zero.
const (
	DefaultPollInterval   = 1000 * time.Millisecond
	DefaultRequestTimeout = 5 * time.Second
)

// PollerConfig configures a Poller.
type PollerConfig struct {
	Interval  time.Duration // Refresh period while auto-update is on
	Timeout   time.Duration // Deadline for each fetch; a timeout counts as a failed fetch
	NewTicker TickerFunc    // Timer factory (tests substitute a manual ticker)
	Logger    zerolog.Logger
}

// Poller decides which data domain is authoritative and keeps the working set fresh.
//
// Overlapping fetches are allowed: within a mode the last response to arrive replaces the
// working set, even if it belongs to an older tick. Responses for a mode that is no longer
// active are discarded.
type Poller struct {
	state   *State
	repo    repository.Repository
	store   settings.Store
	log     zerolog.Logger
	timeout time.Duration
	sched   *Scheduler

	// mu serializes settings transitions and their timer side effects.
	mu sync.Mutex

	baseCtx  context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// NewPoller creates a Poller over state. Nothing is fetched until Start.
func NewPoller(state *State, repo repository.Repository, store settings.Store, cfg PollerConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRequestTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{
		state:   state,
		repo:    repo,
		store:   store,
		log:     logger.Component(cfg.Logger, "poller"),
		timeout: cfg.Timeout,
		baseCtx: ctx,
		cancel:  cancel,
	}
	p.sched = NewScheduler(cfg.Interval, cfg.NewTicker, p.tick)
	return p
}

// Start performs one immediate refresh of the selected mode, regardless of auto-update,
// then starts the timer if auto-update is enabled. The refresh error is returned for
// information only; polling proceeds either way.
func (p *Poller) Start(ctx context.Context) error {
	err := p.Refresh(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Settings().AutoUpdate {
		p.sched.Start()
	}
	return err
}

// Close stops the timer and waits for in-flight refreshes to finish.
func (p *Poller) Close() {
	p.sched.Stop()
	p.cancel()
	p.inflight.Wait()
}

// Polling reports whether the periodic timer is active.
func (p *Poller) Polling() bool {
	return p.sched.Running()
}

// SetAutoUpdate persists the setting and starts or stops the timer.
// If persisting fails the setting and the timer are left unchanged.
func (p *Poller) SetAutoUpdate(enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.state.Settings()
	if current.AutoUpdate != enabled {
		if err := p.store.Set(settings.KeyAutoUpdate, enabled); err != nil {
			return fmt.Errorf("failed to persist auto-update setting: %w", err)
		}
		current.AutoUpdate = enabled
		p.state.setSettings(current)
	}

	if enabled {
		if p.sched.Start() {
			p.log.Debug().Msg("auto-update enabled")
		}
	} else if p.sched.Stop() {
		p.log.Debug().Msg("auto-update disabled")
	}
	return nil
}

// SetSwarmMode persists the setting and immediately refreshes the newly selected mode.
// The timer keeps its running state; only the endpoint it polls changes.
// A failed refresh is not an error; it is retried on the next tick.
func (p *Poller) SetSwarmMode(ctx context.Context, enabled bool) error {
	p.mu.Lock()
	current := p.state.Settings()
	if current.SwarmMode == enabled {
		p.mu.Unlock()
		return nil
	}
	if err := p.store.Set(settings.KeySwarmMode, enabled); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("failed to persist swarm-mode setting: %w", err)
	}
	current.SwarmMode = enabled
	p.state.setSettings(current)
	p.mu.Unlock()

	p.log.Debug().Str(logger.FieldMode, string(workload.ModeFor(enabled))).Msg("mode switched")
	_ = p.Refresh(ctx) //nolint:errcheck // logged in Refresh, retried on the next tick
	return nil
}

// Refresh fetches the full record list for the active mode and replaces the working set.
// On failure the previous working set is kept.
func (p *Poller) Refresh(ctx context.Context) error {
	mode := p.state.Mode()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	var (
		records []workload.Workload
		err     error
	)
	switch mode {
	case workload.ModeService:
		records, err = p.repo.ListServices(ctx)
	default:
		records, err = p.repo.ListContainers(ctx)
	}
	if err != nil {
		p.log.Debug().Err(err).Str(logger.FieldMode, string(mode)).Msg("refresh failed, keeping previous working set")
		return fmt.Errorf("refresh %s list: %w", mode, err)
	}

	applied := p.state.replaceWorkingSet(Snapshot{Mode: mode, Records: records, FetchedAt: time.Now()})
	p.log.Trace().
		Str(logger.FieldMode, string(mode)).
		Int("records", len(records)).
		Bool("applied", applied).
		Int64(logger.FieldDuration, time.Since(start).Milliseconds()).
		Msg("refresh complete")
	return nil
}

// tick runs one refresh in the background so a slow fetch never delays the next tick.
func (p *Poller) tick() {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		_ = p.Refresh(p.baseCtx) //nolint:errcheck // failures are retried on the next tick
	}()
}
