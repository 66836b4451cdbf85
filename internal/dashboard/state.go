// Package dashboard implements the client-side synchronization controller: the owned
// dashboard state, the poll controller that keeps the working set fresh and the action
// dispatcher that runs lifecycle actions against the workload API.
package dashboard

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/zorak1103/conman/internal/settings"
	"github.com/zorak1103/conman/internal/workload"
)

// Snapshot is one wholesale fetch result. Records must be treated as read-only.
type Snapshot struct {
	Mode      workload.Mode
	Records   []workload.Workload
	FetchedAt time.Time
}

// State is the dashboard state shared by the poller, the dispatcher and the view.
// Every sub-structure is replaced as a whole value, so readers never observe a torn update.
type State struct {
	settings atomic.Pointer[settings.Settings]
	working  atomic.Pointer[Snapshot]
	query    atomic.Pointer[string]
	lastLog  atomic.Pointer[string]

	// modeMu orders settings changes against working-set replacement so a snapshot
	// fetched for the old mode can never be stored after the mode has switched.
	modeMu sync.Mutex
	// beforeApply, when set, runs after the mode check and before the store.
	beforeApply func(Snapshot)

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}
}

// NewState creates a State holding the given settings, an empty working set and an empty query.
func NewState(initial settings.Settings) *State {
	s := &State{subs: make(map[chan struct{}]struct{})}
	empty := ""
	s.settings.Store(&initial)
	s.working.Store(&Snapshot{Mode: workload.ModeFor(initial.SwarmMode)})
	s.query.Store(&empty)
	s.lastLog.Store(&empty)
	return s
}

// Settings returns the current settings.
func (s *State) Settings() settings.Settings {
	return *s.settings.Load()
}

// Mode returns the data domain selected by the current settings.
func (s *State) Mode() workload.Mode {
	return workload.ModeFor(s.Settings().SwarmMode)
}

// Snapshot returns the most recently applied working set.
func (s *State) Snapshot() Snapshot {
	return *s.working.Load()
}

// Records returns the working set of the active mode. A snapshot fetched for the other
// mode is never returned.
func (s *State) Records() []workload.Workload {
	s.modeMu.Lock()
	snap, mode := s.working.Load(), s.Mode()
	s.modeMu.Unlock()
	if snap.Mode != mode {
		return nil
	}
	return snap.Records
}

// Query returns the current filter query.
func (s *State) Query() string {
	return *s.query.Load()
}

// SetQuery replaces the filter query.
func (s *State) SetQuery(q string) {
	if q == s.Query() {
		return
	}
	s.query.Store(&q)
	s.notify()
}

// Filtered computes the filtered view of the active working set on demand.
func (s *State) Filtered() []workload.Workload {
	return workload.Filter(s.Query(), s.Records())
}

// LastLog returns the most recently captured log text.
func (s *State) LastLog() string {
	return *s.lastLog.Load()
}

// Subscribe returns a channel that receives a signal after any change of settings,
// working set, query or last log. Signals are coalesced: a slow reader sees one pending
// signal, not one per change. Call the returned function to unsubscribe.
func (s *State) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, ch)
			s.subMu.Unlock()
		})
	}
}

func (s *State) setSettings(v settings.Settings) {
	s.modeMu.Lock()
	s.settings.Store(&v)
	s.modeMu.Unlock()
	s.notify()
}

// replaceWorkingSet applies snap unless it was fetched for a mode that is no longer active.
func (s *State) replaceWorkingSet(snap Snapshot) bool {
	s.modeMu.Lock()
	if snap.Mode != s.Mode() {
		s.modeMu.Unlock()
		return false
	}
	if s.beforeApply != nil {
		s.beforeApply(snap)
	}
	s.working.Store(&snap)
	s.modeMu.Unlock()
	s.notify()
	return true
}

func (s *State) setLastLog(text string) {
	s.lastLog.Store(&text)
	s.notify()
}

func (s *State) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
