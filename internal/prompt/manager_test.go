package prompt

import (
	"strings"
	"testing"

	"github.com/isaacphi/cmdstream/internal/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemMessage(t *testing.T) {
	m := NewManager()

	msg, err := m.SystemMessage([]CommandHelp{
		{Name: "say", Description: "Show text.", Args: []string{"text"}},
		{Name: "wait", Description: "Do nothing."},
	})
	require.NoError(t, err)

	assert.Contains(t, msg, "- say: Show text. Arguments: text.\n")
	assert.Contains(t, msg, "- wait: Do nothing.\n")
	assert.Contains(t, msg, command.RawStart)
	assert.Contains(t, msg, command.RawEnd+"}}")
}

func TestSystemMessageExampleParses(t *testing.T) {
	msg, err := NewManager().SystemMessage(nil)
	require.NoError(t, err)

	// The raw block example in the prompt must itself be a valid command.
	start := strings.Index(msg, `{"write"`)
	require.GreaterOrEqual(t, start, 0)
	complete, partial := command.ParseDocument(msg[start:])
	require.Len(t, complete, 1)
	assert.Nil(t, partial)
	assert.Equal(t, "print(\"hello\")", complete[0].Args["text"])
}

func TestSystemMessageExampleStreams(t *testing.T) {
	msg, err := NewManager().SystemMessage(nil)
	require.NoError(t, err)

	start := strings.Index(msg, `{"write"`)
	require.GreaterOrEqual(t, start, 0)
	reply := "[" + strings.TrimSpace(msg[start:]) + `, {"say": {"text": "done"}}]`

	var got []command.Command
	acc := command.NewAccumulator(command.DispatcherFunc(func(cmd command.Command) error {
		got = append(got, cmd)
		return nil
	}))
	for rest := reply; len(rest) > 0; {
		n := min(7, len(rest))
		_, err := acc.Feed(rest[:n])
		require.NoError(t, err)
		rest = rest[n:]
	}
	partial, err := acc.Close()
	require.NoError(t, err)
	assert.Nil(t, partial)

	require.Len(t, got, 2)
	assert.Equal(t, "write", got[0].Name)
	assert.Equal(t, "print(\"hello\")", got[0].Args["text"])
	assert.Equal(t, "say", got[1].Name)
}

func TestRenderTemplate(t *testing.T) {
	m := NewManager()
	m.AddTemplate(&Template{
		Name:      "greet",
		Template:  "Hello {{.Name}}",
		Variables: []string{"Name"},
	})

	tmpl, err := m.LoadTemplate("greet")
	require.NoError(t, err)

	out, err := m.RenderTemplate(tmpl, map[string]any{"Name": "world"})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)

	_, err = m.RenderTemplate(tmpl, map[string]any{})
	assert.ErrorContains(t, err, "missing variable Name")

	_, err = m.RenderTemplate(&Template{Name: "bad", Template: "{{.Nope"}, nil)
	assert.ErrorContains(t, err, "failed to parse template bad")
}

func TestLoadTemplateMissing(t *testing.T) {
	_, err := NewManager().LoadTemplate("nope")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}
