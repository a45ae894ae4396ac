package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/isaacphi/cmdstream/internal/agent"
	"github.com/isaacphi/cmdstream/internal/command"
	"github.com/isaacphi/cmdstream/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestModelShowsCommands(t *testing.T) {
	ch := make(chan events.Event, 4)
	m := New("test stream", agent.AgentStream{Events: ch})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	say := command.Command{Name: "say", Args: map[string]any{"text": "Hello"}}
	ch <- &agent.CommandEvent{Command: say}
	msg := m.Init()()
	m, cmd := update(t, m, msg)
	require.NotNil(t, cmd)

	m, _ = update(t, m, streamEventMsg{event: &agent.PartialCommandEvent{
		Command: command.Command{Name: "think", Args: map[string]any{"thoughts": "hm"}},
	}})

	view := m.View()
	assert.Contains(t, view, "test stream")
	assert.Contains(t, view, "say")
	assert.Contains(t, view, `"text": "Hello"`)
	assert.Contains(t, view, `{"think":{"thoughts":"hm"}}`)
	assert.Contains(t, view, "streaming")

	m, _ = update(t, m, streamEventMsg{event: &agent.StreamEndEvent{Dispatched: 1}})
	assert.Nil(t, m.partial)
	assert.Contains(t, m.View(), "done: 1 commands")

	close(ch)
	m, _ = update(t, m, waitForEvent(m.stream)())
	assert.True(t, m.finished)
	assert.Contains(t, m.View(), "done: 1 commands")
}

func TestModelReportsErrors(t *testing.T) {
	m := New("errors", agent.AgentStream{})
	boom := errors.New("boom")

	m, _ = update(t, m, streamEventMsg{event: &events.ErrorEvent{Error: boom}})
	m, _ = update(t, m, streamClosedMsg{})

	assert.ErrorIs(t, m.Err(), boom)
	assert.Contains(t, m.View(), "error: boom")
}

func TestModelCutOffCommand(t *testing.T) {
	m := New("cut", agent.AgentStream{})
	partial := command.Command{Name: "write", Args: map[string]any{"filename": "a.go"}}

	m, _ = update(t, m, streamEventMsg{event: &agent.StreamEndEvent{Partial: &partial}})
	assert.Contains(t, m.View(), "write cut off")
}

func TestModelKeys(t *testing.T) {
	m := New("keys", agent.AgentStream{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.True(t, m.help.ShowAll)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
