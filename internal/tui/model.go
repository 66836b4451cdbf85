// Package tui renders the dashboard state as an interactive terminal view.
//
// The model never owns workload data: it reads the dashboard.State on every
// render and re-renders whenever the state signals a change. Every user
// operation runs as a tea.Cmd against the controller or the dispatcher.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zorak1103/conman/internal/dashboard"
	"github.com/zorak1103/conman/internal/repository"
	"github.com/zorak1103/conman/internal/workload"
)

const (
	// noticeFadeDelay is how long a status notice stays visible.
	noticeFadeDelay = 4 * time.Second
	// logTailLines is how many lines of the last captured log are shown.
	logTailLines = 5
)

// Controller is the part of the poll controller the view drives.
type Controller interface {
	SetAutoUpdate(enabled bool) error
	SetSwarmMode(ctx context.Context, enabled bool) error
	Refresh(ctx context.Context) error
}

// ActionRunner triggers workload actions.
type ActionRunner interface {
	TriggerAction(ctx context.Context, w workload.Workload, action string) (repository.ActionResult, error)
}

// Options configures a Model.
type Options struct {
	State      *dashboard.State
	Controller Controller
	Actions    ActionRunner
	LogDir     string // where downloaded logs are written
	Keys       *KeyMap
	Theme      *Theme
}

// stateChangedMsg is delivered whenever the dashboard state signals a change.
type stateChangedMsg struct{}

// commandResultMsg reports the outcome of a controller or action command.
type commandResultMsg struct {
	notice string
	err    error
}

// noticeFadeMsg clears the status line. seq identifies the notice it belongs to.
type noticeFadeMsg struct{ seq int }

// Model implements tea.Model for the dashboard.
type Model struct {
	ctx     context.Context
	state   *dashboard.State
	ctrl    Controller
	actions ActionRunner
	logDir  string
	keys    KeyMap
	theme   Theme

	events      <-chan struct{}
	unsubscribe func()

	cursor    int
	filtering bool
	width     int
	height    int

	notice    string
	noticeErr bool
	noticeSeq int
}

// NewModel creates the dashboard model and subscribes to state changes.
// The subscription is released by Close.
func NewModel(ctx context.Context, opts Options) Model {
	keys := DefaultKeyMap
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	theme := DefaultTheme
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	events, unsubscribe := opts.State.Subscribe()
	return Model{
		ctx:         ctx,
		state:       opts.State,
		ctrl:        opts.Controller,
		actions:     opts.Actions,
		logDir:      opts.LogDir,
		keys:        keys,
		theme:       theme,
		events:      events,
		unsubscribe: unsubscribe,
	}
}

// Close releases the state subscription.
func (model Model) Close() {
	if model.unsubscribe != nil {
		model.unsubscribe()
	}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return listenForStateChange(model.events)
}

// listenForStateChange blocks until the state signals a change.
func listenForStateChange(events <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		if model.filtering {
			return model.handleFilterKeys(message)
		}
		return model.handleKeys(message)

	case stateChangedMsg:
		model.clampCursor()
		return model, listenForStateChange(model.events)

	case commandResultMsg:
		return model.showResult(message)

	case noticeFadeMsg:
		if message.seq == model.noticeSeq {
			model.notice = ""
			model.noticeErr = false
		}

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
	}
	return model, nil
}

func (model Model) handleKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.cursor < len(model.state.Filtered())-1 {
			model.cursor++
		}

	case key.Matches(message, model.keys.FilterActivate):
		model.filtering = true
		model.cursor = 0

	case key.Matches(message, model.keys.FilterClear):
		model.state.SetQuery("")
		model.clampCursor()

	case key.Matches(message, model.keys.ToggleAutoUpdate):
		return model, model.toggleAutoUpdate()

	case key.Matches(message, model.keys.ToggleSwarmMode):
		model.cursor = 0
		return model, model.toggleSwarmMode()

	case key.Matches(message, model.keys.Refresh):
		return model, model.refresh()

	case key.Matches(message, model.keys.Remove):
		return model, model.trigger(workload.ActionRemove)

	case key.Matches(message, model.keys.DownloadLog):
		return model, model.trigger(workload.ActionDownloadLog)
	}
	return model, nil
}

// handleFilterKeys routes typed characters into the filter query.
// Esc clears a non-empty query, or leaves filter mode when already empty.
func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	query := model.state.Query()

	switch {
	case message.Type == tea.KeyCtrlC:
		return model, tea.Quit

	case key.Matches(message, model.keys.FilterClear):
		if query != "" {
			model.state.SetQuery("")
		} else {
			model.filtering = false
		}

	case message.Type == tea.KeyEnter:
		model.filtering = false

	case message.Type == tea.KeyBackspace:
		if query != "" {
			runes := []rune(query)
			model.state.SetQuery(string(runes[:len(runes)-1]))
		}

	case message.Type == tea.KeyRunes || message.Type == tea.KeySpace:
		if message.Type == tea.KeySpace {
			query += " "
		} else {
			query += string(message.Runes)
		}
		model.state.SetQuery(query)
	}

	model.clampCursor()
	return model, nil
}

func (model Model) toggleAutoUpdate() tea.Cmd {
	enabled := !model.state.Settings().AutoUpdate
	ctrl := model.ctrl
	return func() tea.Msg {
		if err := ctrl.SetAutoUpdate(enabled); err != nil {
			return commandResultMsg{err: fmt.Errorf("auto-update: %w", err)}
		}
		return commandResultMsg{notice: "auto-update " + onOff(enabled)}
	}
}

func (model Model) toggleSwarmMode() tea.Cmd {
	enabled := !model.state.Settings().SwarmMode
	ctx, ctrl := model.ctx, model.ctrl
	return func() tea.Msg {
		if err := ctrl.SetSwarmMode(ctx, enabled); err != nil {
			return commandResultMsg{err: fmt.Errorf("swarm mode: %w", err)}
		}
		return commandResultMsg{notice: "swarm mode " + onOff(enabled)}
	}
}

func (model Model) refresh() tea.Cmd {
	ctx, ctrl := model.ctx, model.ctrl
	return func() tea.Msg {
		if err := ctrl.Refresh(ctx); err != nil {
			return commandResultMsg{err: fmt.Errorf("refresh: %w", err)}
		}
		return commandResultMsg{notice: "refreshed"}
	}
}

// trigger runs an action on the selected workload. A workload without the
// action's link is reported right away, without issuing a command.
func (model Model) trigger(action string) tea.Cmd {
	selected, ok := model.Selected()
	if !ok {
		return nil
	}
	if !selected.Links.Get(action).Valid() {
		return func() tea.Msg {
			return commandResultMsg{err: fmt.Errorf("%s is not available for %s", action, displayName(selected))}
		}
	}

	ctx, actions, logDir := model.ctx, model.actions, model.logDir
	return func() tea.Msg {
		result, err := actions.TriggerAction(ctx, selected, action)
		if err != nil {
			return commandResultMsg{err: err}
		}
		if action != workload.ActionDownloadLog {
			return commandResultMsg{notice: fmt.Sprintf("%s: %s done", displayName(selected), action)}
		}
		path, err := saveLog(logDir, selected, result.Body, time.Now())
		if err != nil {
			return commandResultMsg{err: err}
		}
		return commandResultMsg{notice: "log saved to " + path}
	}
}

func (model Model) showResult(message commandResultMsg) (tea.Model, tea.Cmd) {
	model.noticeSeq++
	if message.err != nil {
		model.notice = message.err.Error()
		model.noticeErr = true
	} else {
		model.notice = message.notice
		model.noticeErr = false
	}
	seq := model.noticeSeq
	return model, tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
		return noticeFadeMsg{seq: seq}
	})
}

// Selected returns the workload under the cursor in the filtered view.
func (model Model) Selected() (workload.Workload, bool) {
	records := model.state.Filtered()
	if model.cursor < 0 || model.cursor >= len(records) {
		return workload.Workload{}, false
	}
	return records[model.cursor], true
}

func (model *Model) clampCursor() {
	n := len(model.state.Filtered())
	if model.cursor >= n {
		model.cursor = n - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}
}

// View implements tea.Model.
func (model Model) View() string {
	var b strings.Builder

	b.WriteString(model.headerLine())
	b.WriteString("\n\n")

	records := model.state.Filtered()
	b.WriteString(model.renderTable(records))

	if pane := model.logPane(); pane != "" {
		b.WriteString("\n")
		b.WriteString(pane)
	}

	b.WriteString("\n")
	b.WriteString(model.statusLine())
	b.WriteString("\n")
	b.WriteString(model.helpLine())
	return b.String()
}

func (model Model) headerLine() string {
	s := model.state.Settings()

	mode := "containers"
	if s.SwarmMode {
		mode = "services"
	}

	parts := []string{
		model.theme.Header.Render("conman"),
		model.theme.Badge.Render(mode),
		model.theme.Badge.Render("auto-update " + onOff(s.AutoUpdate)),
	}
	if snap := model.state.Snapshot(); !snap.FetchedAt.IsZero() && snap.Mode == model.state.Mode() {
		parts = append(parts, model.theme.Help.Render("updated "+snap.FetchedAt.Format("15:04:05")))
	}
	return strings.Join(parts, " ")
}

func (model Model) renderTable(records []workload.Workload) string {
	columns := []string{"NAME", "IMAGE", "STATE", "STATUS", "ID"}
	widths := []int{4, 5, 5, 6, 2}
	rows := make([][]string, 0, len(records))
	for _, w := range records {
		row := []string{displayName(w), w.Image, w.State.String(), w.Status, w.ShortID()}
		for i, cell := range row {
			if l := lipgloss.Width(cell); l > widths[i] {
				widths[i] = l
			}
		}
		rows = append(rows, row)
	}

	var b strings.Builder
	b.WriteString(model.theme.Column.Render(formatRow(columns, widths)))
	b.WriteString("\n")

	if len(rows) == 0 {
		if model.state.Query() != "" {
			b.WriteString(model.theme.Help.Render("no workloads match the filter"))
		} else {
			b.WriteString(model.theme.Help.Render("no workloads"))
		}
		b.WriteString("\n")
		return b.String()
	}

	for i, row := range rows {
		line := formatRow(row, widths)
		switch {
		case i == model.cursor:
			line = model.theme.Selected.Render(line)
		default:
			stateCol := model.theme.state(records[i].State).Render(padRight(row[2], widths[2]))
			line = formatRow(row[:2], widths[:2]) + "  " + stateCol + "  " + formatRow(row[3:], widths[3:])
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// logPane shows the tail of the most recently captured log, if any.
func (model Model) logPane() string {
	text := strings.TrimRight(model.state.LastLog(), "\n")
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	title := "last log"
	if len(lines) > logTailLines {
		title = fmt.Sprintf("last log (%d of %d lines)", logTailLines, len(lines))
		lines = lines[len(lines)-logTailLines:]
	}

	var b strings.Builder
	b.WriteString(model.theme.Column.Render(title))
	b.WriteString("\n")
	for _, line := range lines {
		b.WriteString(model.theme.Help.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (model Model) statusLine() string {
	var parts []string
	if model.filtering || model.state.Query() != "" {
		filter := "filter: " + model.state.Query()
		if model.filtering {
			filter += "█"
		}
		parts = append(parts, filter)
	}
	if model.notice != "" {
		style := model.theme.Notice
		if model.noticeErr {
			style = model.theme.Error
		}
		parts = append(parts, style.Render(model.notice))
	}
	return strings.Join(parts, "  ")
}

func (model Model) helpLine() string {
	var parts []string
	for _, binding := range model.keys.helpBindings() {
		h := binding.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return model.theme.Help.Render(strings.Join(parts, " • "))
}

// saveLog writes a downloaded log below dir and returns the file path.
func saveLog(dir string, w workload.Workload, body string, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	name := fmt.Sprintf("%s-%s.log", sanitizeFileName(displayName(w)), now.Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		return "", fmt.Errorf("failed to write log %s: %w", path, err)
	}
	return path, nil
}

func sanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}

func displayName(w workload.Workload) string {
	if w.Name != "" {
		return w.Name
	}
	if id := w.ShortID(); id != "" {
		return id
	}
	return "(unnamed)"
}

func formatRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = padRight(cell, widths[i])
	}
	return strings.Join(padded, "  ")
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

// Run starts the dashboard program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, model Model) error {
	defer model.Close()
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
