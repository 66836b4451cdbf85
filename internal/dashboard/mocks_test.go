package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zorak1103/conman/internal/repository"
	"github.com/zorak1103/conman/internal/workload"
)

// mockRepository implements repository.Repository for testing
type mockRepository struct {
	mu sync.Mutex

	containers []workload.Workload
	services   []workload.Workload
	listErr    error

	// listHook, when set, replaces the canned list responses. call is 1-based per mode.
	listHook func(ctx context.Context, mode workload.Mode, call int) ([]workload.Workload, error)

	actionResult repository.ActionResult
	actionErr    error

	containerCalls int
	serviceCalls   int
	actionCalls    int
	actionLinks    []workload.Link
}

var _ repository.Repository = (*mockRepository)(nil)

func (m *mockRepository) ListContainers(ctx context.Context) ([]workload.Workload, error) {
	m.mu.Lock()
	m.containerCalls++
	call, hook, records, err := m.containerCalls, m.listHook, m.containers, m.listErr
	m.mu.Unlock()

	if hook != nil {
		return hook(ctx, workload.ModeContainer, call)
	}
	return records, err
}

func (m *mockRepository) ListServices(ctx context.Context) ([]workload.Workload, error) {
	m.mu.Lock()
	m.serviceCalls++
	call, hook, records, err := m.serviceCalls, m.listHook, m.services, m.listErr
	m.mu.Unlock()

	if hook != nil {
		return hook(ctx, workload.ModeService, call)
	}
	return records, err
}

func (m *mockRepository) PerformAction(_ context.Context, link *workload.Link) (repository.ActionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actionCalls++
	if link != nil {
		m.actionLinks = append(m.actionLinks, *link)
	}
	return m.actionResult, m.actionErr
}

func (m *mockRepository) calls() (containers, services, actions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.containerCalls, m.serviceCalls, m.actionCalls
}

func (m *mockRepository) setContainers(records []workload.Workload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.containers = records
}

func (m *mockRepository) setListErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// waitForCalls blocks until the repository has served the given number of list calls.
func waitForCalls(t *testing.T, m *mockRepository, containers, services int) {
	t.Helper()
	require.Eventually(t, func() bool {
		c, s, _ := m.calls()
		return c == containers && s == services
	}, time.Second, time.Millisecond)
}

// manualClock hands out tickers that only fire when Advance is called.
type manualClock struct {
	mu      sync.Mutex
	tickers map[*manualTicker]struct{}
	created int
}

func newManualClock() *manualClock {
	return &manualClock{tickers: make(map[*manualTicker]struct{})}
}

func (c *manualClock) NewTicker(_ time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{clock: c, ch: make(chan time.Time), stopped: make(chan struct{})}
	c.tickers[t] = struct{}{}
	c.created++
	return t
}

// Advance fires one period on every active ticker and returns once each has received it.
// The receiver may still be handling the tick; tests that stop the timer right after
// the last Advance wait for its effect first (see waitForCalls).
func (c *manualClock) Advance() {
	c.mu.Lock()
	active := make([]*manualTicker, 0, len(c.tickers))
	for t := range c.tickers {
		active = append(active, t)
	}
	c.mu.Unlock()

	now := time.Now()
	for _, t := range active {
		select {
		case t.ch <- now:
		case <-t.stopped:
		}
	}
}

func (c *manualClock) active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

type manualTicker struct {
	clock   *manualClock
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.once.Do(func() {
		close(t.stopped)
		t.clock.mu.Lock()
		delete(t.clock.tickers, t)
		t.clock.mu.Unlock()
	})
}
