package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/zorak1103/conman/internal/errors"
	"github.com/zorak1103/conman/internal/logger"
	"github.com/zorak1103/conman/internal/repository"
	"github.com/zorak1103/conman/internal/workload"
)

// Refresher re-fetches the working set of the active mode.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Dispatcher executes single lifecycle actions and reconciles state afterwards.
// Concurrent or duplicate invocations are not deduplicated; each one reconciles
// through its own refresh.
type Dispatcher struct {
	state     *State
	repo      repository.Repository
	refresher Refresher
	timeout   time.Duration
	log       zerolog.Logger
}

// NewDispatcher creates a Dispatcher. A non-positive timeout selects DefaultRequestTimeout.
func NewDispatcher(state *State, repo repository.Repository, refresher Refresher, timeout time.Duration, log zerolog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Dispatcher{
		state:     state,
		repo:      repo,
		refresher: refresher,
		timeout:   timeout,
		log:       logger.Component(log, "dispatcher"),
	}
}

// Trigger issues the action described by link once. A missing or incomplete link fails
// with ErrActionUnavailable before any request is made. On success a textual body is kept
// as the last log and the working set is refreshed once; on failure nothing is refreshed
// and the error is returned. There is no retry.
func (d *Dispatcher) Trigger(ctx context.Context, link *workload.Link) (repository.ActionResult, error) {
	if !link.Valid() {
		return repository.ActionResult{}, fmt.Errorf("trigger action: %w", apperrors.ErrActionUnavailable)
	}

	actionCtx, cancel := context.WithTimeout(ctx, d.timeout)
	result, err := d.repo.PerformAction(actionCtx, link)
	cancel()
	if err != nil {
		d.log.Warn().Err(err).
			Str(logger.FieldMethod, link.Method).
			Str(logger.FieldURL, link.Href).
			Msg("action failed")
		return repository.ActionResult{}, fmt.Errorf("%s %s: %w", link.Method, link.Href, err)
	}

	d.log.Info().
		Str(logger.FieldMethod, link.Method).
		Str(logger.FieldURL, link.Href).
		Int(logger.FieldStatus, result.StatusCode).
		Msg("action succeeded")

	if result.HasText() {
		d.state.setLastLog(result.Body)
	}

	if err := d.refresher.Refresh(ctx); err != nil {
		d.log.Debug().Err(err).Msg("refresh after action failed")
	}
	return result, nil
}

// TriggerAction looks up the named action on w and triggers it.
func (d *Dispatcher) TriggerAction(ctx context.Context, w workload.Workload, action string) (repository.ActionResult, error) {
	result, err := d.Trigger(ctx, w.Links.Get(action))
	if err != nil {
		return result, fmt.Errorf("%s on %s: %w", action, w.Name, err)
	}
	return result, nil
}
