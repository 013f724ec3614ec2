// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/todo"
)

const (
	title           = "To-Do List"
	placeholder     = "Add a new task"
	emptyTaskStatus = "Input Error: Task cannot be empty."
	defaultPulse    = 300 * time.Millisecond
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1E90FF")).MarginBottom(1)
	plusStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#1E90FF")).Padding(0, 1)
	plusPulseStyle = plusStyle.Background(lipgloss.Color("#63B3FF")).Padding(0, 2)
	plusEaseStyle  = plusStyle.Background(lipgloss.Color("#4AA3FF"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#1E90FF")).Bold(true)
	completedStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#808080"))
	actionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5F9EA0"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
	modalStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#1E90FF")).Padding(0, 1)
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	pulse   time.Duration
	animate bool
	logger  *log.Logger
}

// WithPulse sets the duration of each half of the add pulse.
func WithPulse(d time.Duration) TUIOption {
	return func(c *tuiConfig) {
		if d > 0 {
			c.pulse = d
		}
	}
}

// WithAnimate enables or disables the add pulse.
func WithAnimate(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.animate = enabled
	}
}

// WithLogger sets the logger for UI-level failures.
func WithLogger(l *log.Logger) TUIOption {
	return func(c *tuiConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// RunTUI runs the interactive list over s until the user quits or ctx is
// done. The store must already be loaded.
func RunTUI(ctx context.Context, s *store.Store, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	events, unsubscribe := s.Subscribe(64)
	defer unsubscribe()

	model := newTUIModel(s, events, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

type focus int

const (
	focusInput focus = iota
	focusList
)

type pulsePhase int

const (
	pulseIdle pulsePhase = iota
	pulseGrow
	pulseShrink
)

type tuiModel struct {
	store  *store.Store
	events <-chan store.Event
	cfg    tuiConfig

	tasks  todo.List
	cursor int
	focus  focus
	input  textinput.Model

	editing bool
	editID  string
	edit    textinput.Model

	status    string
	statusErr bool

	pulse    pulsePhase
	pulseGen int
}

type eventMsg struct {
	event store.Event
}

type eventsClosedMsg struct{}

type pulseMsg struct {
	gen   int
	phase pulsePhase
}

func newTUIModel(s *store.Store, events <-chan store.Event, opts ...TUIOption) *tuiModel {
	cfg := tuiConfig{pulse: defaultPulse, animate: true, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&cfg)
	}

	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = 512
	input.Width = 48
	input.Focus()

	edit := textinput.New()
	edit.CharLimit = 512
	edit.Width = 48

	return &tuiModel{
		store:  s,
		events: events,
		cfg:    cfg,
		tasks:  s.Snapshot(),
		focus:  focusInput,
		input:  input,
		edit:   edit,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForEvent(m.events))
}

func waitForEvent(ch <-chan store.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

func pulseCmd(d time.Duration, gen int, next pulsePhase) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return pulseMsg{gen: gen, phase: next}
	})
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.editing {
			return m.updateEdit(msg)
		}
		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateList(msg)

	case tea.WindowSizeMsg:
		width := msg.Width - 10
		if width < 10 {
			width = 10
		}
		m.input.Width = width
		m.edit.Width = width
		return m, nil

	case eventMsg:
		cmd := m.applyEvent(msg.event)
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case eventsClosedMsg:
		return m, nil

	case pulseMsg:
		if msg.gen != m.pulseGen {
			return m, nil
		}
		m.pulse = msg.phase
		if msg.phase == pulseShrink {
			return m, pulseCmd(m.cfg.pulse, m.pulseGen, pulseIdle)
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.editing {
		m.edit, cmd = m.edit.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *tuiModel) applyEvent(ev store.Event) tea.Cmd {
	if ev.Snapshot != nil {
		m.tasks = ev.Snapshot
		m.cursor = clampCursor(m.cursor, len(m.tasks))
	}

	switch ev.Kind {
	case store.EventAdded:
		if !m.cfg.animate {
			return nil
		}
		m.pulseGen++
		m.pulse = pulseGrow
		return pulseCmd(m.cfg.pulse, m.pulseGen, pulseShrink)
	case store.EventPersistFailed:
		m.setError(fmt.Sprintf("Save failed: %v", ev.Err))
	case store.EventLoaded:
		if ev.Err != nil {
			m.setError(fmt.Sprintf("Load failed: %v", ev.Err))
		}
	}
	return nil
}

func (m *tuiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.add()
		return m, nil
	case "tab", "esc", "down":
		m.setFocus(focusList)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) add() {
	_, err := m.store.Add(m.input.Value())
	if err != nil {
		if errors.Is(err, store.ErrEmptyText) {
			m.setError(emptyTaskStatus)
			return
		}
		m.cfg.logger.Error("add failed", "err", err)
		m.setError(err.Error())
		return
	}
	m.input.SetValue("")
	m.clearStatus()
	m.refresh()
	m.cursor = len(m.tasks) - 1
}

// refresh reads the store directly so the view reflects a mutation before
// its event arrives.
func (m *tuiModel) refresh() {
	m.tasks = m.store.Snapshot()
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "a", "i":
		m.setFocus(focusInput)
		return m, textinput.Blink
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.setFocus(focusInput)
			return m, textinput.Blink
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case " ", "space", "x":
		if t, ok := m.selected(); ok {
			m.store.ToggleCompletion(t.ID)
			m.clearStatus()
			m.refresh()
		}
	case "d", "delete", "backspace":
		if t, ok := m.selected(); ok {
			m.store.Delete(t.ID)
			m.clearStatus()
			m.refresh()
		}
	case "e":
		if t, ok := m.selected(); ok {
			m.editing = true
			m.editID = t.ID
			m.edit.SetValue(t.Text)
			m.edit.CursorEnd()
			m.edit.Focus()
			m.clearStatus()
			return m, textinput.Blink
		}
	}
	return m, nil
}

func (m *tuiModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeEdit()
		return m, nil
	case "enter":
		_, found, err := m.store.Edit(m.editID, m.edit.Value())
		if err != nil {
			if errors.Is(err, store.ErrEmptyText) {
				m.setError(emptyTaskStatus)
				return m, nil
			}
			m.cfg.logger.Error("edit failed", "err", err)
			m.setError(err.Error())
			return m, nil
		}
		if !found {
			m.setError("Task no longer exists.")
		} else {
			m.clearStatus()
		}
		m.closeEdit()
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.edit, cmd = m.edit.Update(msg)
	return m, cmd
}

func (m *tuiModel) closeEdit() {
	m.editing = false
	m.editID = ""
	m.edit.SetValue("")
	m.edit.Blur()
}

func (m *tuiModel) setFocus(f focus) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
		m.cursor = clampCursor(m.cursor, len(m.tasks))
	}
}

func (m *tuiModel) selected() (todo.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return todo.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *tuiModel) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *tuiModel) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	plus := plusStyle.Render("+")
	switch m.pulse {
	case pulseGrow:
		plus = plusPulseStyle.Render("+")
	case pulseShrink:
		plus = plusEaseStyle.Render("+")
	}
	b.WriteString(m.input.View() + "  " + plus + "\n\n")

	if m.editing {
		writeEditModal(&b, m.edit)
	} else {
		writeTasks(&b, m.tasks, m.cursor, m.focus == focusList)
	}

	if m.status != "" {
		style := hintStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status) + "\n\n")
	}

	writeFooter(&b, m.focus, m.editing)
	return b.String()
}

func writeTasks(b *strings.Builder, tasks todo.List, cursor int, listFocused bool) {
	if len(tasks) == 0 {
		b.WriteString(hintStyle.Render("  No tasks yet.") + "\n\n")
		return
	}
	for i, t := range tasks {
		prefix := "  "
		if listFocused && i == cursor {
			prefix = cursorStyle.Render("> ")
		}
		text := t.Text
		action := "Complete"
		if t.Completed {
			text = completedStyle.Render(text)
			action = "Undo"
		}
		b.WriteString(fmt.Sprintf("%s%s  %s\n", prefix, text, actionStyle.Render("["+action+"]")))
	}
	active, completed := tasks.Counts()
	b.WriteString("\n" + hintStyle.Render(fmt.Sprintf("  %d open, %d done", active, completed)) + "\n\n")
}

func writeEditModal(b *strings.Builder, edit textinput.Model) {
	body := "Edit Task\n\n" + edit.View() + "\n\n" + hintStyle.Render("enter save | esc cancel")
	b.WriteString(modalStyle.Render(body) + "\n\n")
}

func writeFooter(b *strings.Builder, f focus, editing bool) {
	switch {
	case editing:
		return
	case f == focusInput:
		b.WriteString(hintStyle.Render("enter add | tab list | ctrl+c quit") + "\n")
	default:
		b.WriteString(hintStyle.Render("space toggle | e edit | d delete | tab input | q quit") + "\n")
	}
}

func clampCursor(cursor, n int) int {
	if n == 0 {
		return 0
	}
	if cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
