package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/isaacphi/cmdstream/internal/agent"
	"github.com/isaacphi/cmdstream/internal/command"
	"github.com/isaacphi/cmdstream/internal/events"
	"github.com/isaacphi/cmdstream/internal/ui/tui/theme"
)

// Lines kept free around the command list for the title, partial pane,
// status and help.
const chromeHeight = 10

type streamEventMsg struct {
	event events.Event
}

type streamClosedMsg struct{}

// Model shows the commands of one agent stream as they arrive
type Model struct {
	title    string
	stream   agent.AgentStream
	theme    *theme.Theme
	keys     keyMap
	help     help.Model
	viewport viewport.Model

	commands []command.Command
	partial  *command.Command
	status   string
	err      error
	ended    bool
	finished bool
}

func New(title string, stream agent.AgentStream) Model {
	return Model{
		title:    title,
		stream:   stream,
		theme:    theme.DefaultTheme(),
		keys:     defaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(80, 20),
		status:   "streaming…",
	}
}

// Run shows the stream in the terminal until the user quits. It returns the
// error that ended the stream, if any.
func Run(ctx context.Context, title string, stream agent.AgentStream) error {
	p := tea.NewProgram(New(title, stream), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	if m, ok := final.(Model); ok {
		return m.Err()
	}
	return nil
}

func waitForEvent(stream agent.AgentStream) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-stream.Events
		if !ok {
			return streamClosedMsg{}
		}
		return streamEventMsg{event: event}
	}
}

// Err returns the error reported by the stream.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.stream)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = max(msg.Height-chromeHeight, 3)
		m.help.Width = msg.Width
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.ToggleHelp):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case streamEventMsg:
		m.handleEvent(msg.event)
		return m, waitForEvent(m.stream)

	case streamClosedMsg:
		m.finished = true
		if m.err == nil && !m.ended {
			m.status = "stream closed"
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleEvent(event events.Event) {
	switch e := event.(type) {
	case *agent.CommandEvent:
		m.commands = append(m.commands, e.Command)
		m.partial = nil
		m.refresh()
	case *agent.PartialCommandEvent:
		partial := e.Command
		m.partial = &partial
	case *agent.StreamEndEvent:
		m.partial = e.Partial
		m.ended = true
		m.status = fmt.Sprintf("done: %d commands", e.Dispatched)
		if e.Partial != nil {
			m.status += fmt.Sprintf(", %s cut off", e.Partial.Name)
		}
	case *events.ErrorEvent:
		m.err = e.Error
		m.status = "failed"
	}
}

// refresh rebuilds the command list and keeps it scrolled to the newest.
func (m *Model) refresh() {
	var b strings.Builder
	for i, cmd := range m.commands {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.theme.CommandNameStyle.Render(cmd.Name))
		b.WriteString("\n")
		b.WriteString(m.theme.CommandArgsStyle.Render(formatArgs(cmd.Args)))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func formatArgs(args map[string]any) string {
	data, err := json.MarshalIndent(args, "", "  ")
	if err != nil {
		return fmt.Sprint(args)
	}
	return string(data)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.TitleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.partial != nil {
		b.WriteString(m.theme.PartialStyle.Render(m.partial.String()))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(m.theme.ErrorStyle.Render("error: " + m.err.Error()))
	} else {
		b.WriteString(m.theme.StatusStyle.Render(m.status))
	}
	b.WriteString("\n")

	b.WriteString(m.theme.FooterStyle.Render(m.help.View(m.keys)))

	return m.theme.DocStyle.Render(b.String())
}
