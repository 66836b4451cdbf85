// Package workload defines the container/service records shown on the dashboard.
package workload

import (
	"encoding/json"
	"strings"
)

// State is the lifecycle state of a workload.
type State string

// Known workload states. Anything else is folded into StateUnknown.
const (
	StateCreated State = "created"
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateExited  State = "exited"
	StateDead    State = "dead"
	StateUnknown State = "unknown"
)

// ParseState maps a raw state string to a known State, case-insensitively.
// Unrecognized values yield StateUnknown.
func ParseState(raw string) State {
	switch s := State(strings.ToLower(strings.TrimSpace(raw))); s {
	case StateCreated, StateRunning, StatePaused, StateExited, StateDead:
		return s
	default:
		return StateUnknown
	}
}

// String returns the state name.
func (s State) String() string {
	return string(s)
}

// UnmarshalJSON folds unrecognized states into StateUnknown.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = StateUnknown
		return nil //nolint:nilerr // non-string states are treated as unknown
	}
	*s = ParseState(raw)
	return nil
}

// Action names used as keys of a workload's links.
const (
	ActionRemove      = "remove"
	ActionDownloadLog = "downloadLog"
)

// Link is a server-supplied descriptor of an available lifecycle action.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel,omitempty"`
	Method string `json:"method"`
}

// Valid reports whether both href and method are set.
func (l *Link) Valid() bool {
	return l != nil && l.Href != "" && l.Method != ""
}

// UnmarshalJSON accepts the legacy "type" field as an alias for "method".
func (l *Link) UnmarshalJSON(data []byte) error {
	var raw struct {
		Href   string `json:"href"`
		Rel    string `json:"rel"`
		Method string `json:"method"`
		Type   string `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.Href = raw.Href
	l.Rel = raw.Rel
	l.Method = strings.ToUpper(raw.Method)
	if l.Method == "" {
		l.Method = strings.ToUpper(raw.Type)
	}
	return nil
}

// Links holds the actions the server offers for a workload. A nil entry means unavailable.
type Links struct {
	Remove      *Link `json:"remove,omitempty"`
	DownloadLog *Link `json:"downloadLog,omitempty"`
}

// UnmarshalJSON drops partially populated links so entries are either complete or absent.
func (l *Links) UnmarshalJSON(data []byte) error {
	type plain Links
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Links(p)
	if !l.Remove.Valid() {
		l.Remove = nil
	}
	if !l.DownloadLog.Valid() {
		l.DownloadLog = nil
	}
	return nil
}

// Get returns the link registered for the named action, or nil.
func (l Links) Get(action string) *Link {
	switch action {
	case ActionRemove:
		return l.Remove
	case ActionDownloadLog:
		return l.DownloadLog
	default:
		return nil
	}
}

// Workload is a single container or swarm service.
type Workload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	State  State  `json:"state"`
	Status string `json:"status,omitempty"`
	Links  Links  `json:"links"`
}

// UnmarshalJSON treats a missing state as StateUnknown.
func (w *Workload) UnmarshalJSON(data []byte) error {
	type plain Workload
	p := plain{State: StateUnknown}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*w = Workload(p)
	return nil
}

// ShortID returns the first 12 characters of the ID, as the docker CLI displays it.
func (w Workload) ShortID() string {
	if len(w.ID) > 12 {
		return w.ID[:12]
	}
	return w.ID
}

// Mode selects which data domain is authoritative.
type Mode string

// Supported modes.
const (
	ModeContainer Mode = "container"
	ModeService   Mode = "service"
)

// ModeFor returns the mode selected by the swarm-mode setting.
func ModeFor(swarmMode bool) Mode {
	if swarmMode {
		return ModeService
	}
	return ModeContainer
}
