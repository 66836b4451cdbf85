package dashboard

import (
	"sync"
	"time"
)

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker with the given period.
type TickerFunc func(period time.Duration) Ticker

// NewTicker is the TickerFunc backed by time.Ticker.
func NewTicker(period time.Duration) Ticker {
	return &timeTicker{t: time.NewTicker(period)}
}

type timeTicker struct {
	t *time.Ticker
}

func (t *timeTicker) C() <-chan time.Time { return t.t.C }
func (t *timeTicker) Stop()               { t.t.Stop() }

// Scheduler owns the single periodic timer. Start is a no-op while running and Stop is
// idempotent, so at most one timer exists at any time.
type Scheduler struct {
	mu        sync.Mutex
	period    time.Duration
	newTicker TickerFunc
	tick      func()

	stop chan struct{}
	done chan struct{}
}

// NewScheduler creates a stopped scheduler that calls tick once per period.
// tick runs on the scheduler goroutine and must not block.
func NewScheduler(period time.Duration, newTicker TickerFunc, tick func()) *Scheduler {
	if newTicker == nil {
		newTicker = NewTicker
	}
	return &Scheduler{period: period, newTicker: newTicker, tick: tick}
}

// Start starts the timer. It reports false if the timer was already running.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return false
	}

	t := s.newTicker(s.period)
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done = stop, done

	go func() {
		defer close(done)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C():
				select {
				case <-stop:
					return
				default:
				}
				s.tick()
			}
		}
	}()
	return true
}

// Stop cancels the timer and waits until no further tick can fire.
// It reports false if the timer was not running.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop == nil {
		return false
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
	return true
}

// Running reports whether the timer is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}
