package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings of the dashboard.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	// Filter.
	FilterActivate key.Binding // Enter filter mode.
	FilterClear    key.Binding // Clear filter and exit filter mode.

	// Settings.
	ToggleAutoUpdate key.Binding
	ToggleSwarmMode  key.Binding
	Refresh          key.Binding

	// Actions on the selected workload.
	Remove      key.Binding
	DownloadLog key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("↓", "down"),
	),
	FilterActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	FilterClear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear filter"),
	),
	ToggleAutoUpdate: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "auto-update"),
	),
	ToggleSwarmMode: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "swarm"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Remove: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "remove"),
	),
	DownloadLog: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "log"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// helpBindings lists the bindings shown in the footer, in display order.
func (k KeyMap) helpBindings() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.FilterActivate, k.ToggleAutoUpdate, k.ToggleSwarmMode,
		k.Refresh, k.Remove, k.DownloadLog, k.Quit,
	}
}
