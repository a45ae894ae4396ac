package agent

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/isaacphi/cmdstream/internal/command"
	"github.com/isaacphi/cmdstream/internal/events"
	"github.com/isaacphi/cmdstream/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func drain(t *testing.T, stream AgentStream) []events.Event {
	t.Helper()
	var got []events.Event
	for event := range stream.Events {
		got = append(got, event)
	}
	<-stream.Done
	return got
}

func commandNames(evs []events.Event) []string {
	var names []string
	for _, e := range evs {
		if c, ok := e.(*CommandEvent); ok {
			names = append(names, c.Command.Name)
		}
	}
	return names
}

// channelStream builds an LLMStream that replays the given events.
func channelStream(evs ...events.Event) llm.LLMStream {
	ch := make(chan events.Event, len(evs))
	done := make(chan struct{})
	for _, e := range evs {
		ch <- e
	}
	close(ch)
	close(done)
	return llm.LLMStream{Events: ch, Done: done}
}

func TestRunDispatchesCommands(t *testing.T) {
	reg := command.NewRegistry()
	var out bytes.Buffer
	RegisterBuiltins(reg, &out, nil)

	input := `Sure. [{"say": {"text": "Hello"}}, {"think": {"thoughts": {"plan": ["greet"]}}}, {"write": {"filename": "a.txt", "text": "hi"}}]`
	a := New(reg, nil, Options{})
	stream := a.Run(context.Background(), llm.ReaderStream(context.Background(), strings.NewReader(input), 3))

	got := drain(t, stream)
	assert.Equal(t, []string{"say", "think", "write"}, commandNames(got))

	end, ok := got[len(got)-1].(*StreamEndEvent)
	require.True(t, ok, "last event is %T", got[len(got)-1])
	assert.Equal(t, stream.ID, end.StreamID)
	assert.Equal(t, 3, end.Dispatched)
	assert.Nil(t, end.Partial)
	assert.Equal(t, input, end.Content)

	assert.Equal(t, "Hello\n(thinking) {\"plan\":[\"greet\"]}\n--- a.txt ---\nhi\n--- end a.txt ---\n", out.String())
}

func TestRunReportsPartials(t *testing.T) {
	reg := command.NewRegistry()
	reg.Register("say", func(command.Command) error { return nil })

	a := New(reg, nil, Options{ShowPartial: true})
	stream := a.Run(context.Background(), channelStream(
		&llm.TextEvent{Content: `[{"say": {"text": "He`},
		&llm.TextEvent{Content: `llo`},
		&llm.TextEvent{Content: ``},
	))

	got := drain(t, stream)

	var partials []string
	for _, e := range got {
		if p, ok := e.(*PartialCommandEvent); ok {
			partials = append(partials, p.Command.Args["text"].(string))
		}
	}
	assert.Equal(t, []string{"He", "Hello"}, partials)

	end, ok := got[len(got)-1].(*StreamEndEvent)
	require.True(t, ok)
	require.NotNil(t, end.Partial)
	assert.Equal(t, "say", end.Partial.Name)
	assert.Equal(t, "Hello", end.Partial.Args["text"])
	assert.Zero(t, end.Dispatched)
}

func TestRunStopsOnDispatchError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boom := errors.New("boom")
	reg := command.NewRegistry()
	reg.Register("say", func(command.Command) error { return boom })

	input := `[{"say": {"text": "one"}}, {"say": {"text": "two"}}]`
	stream := New(reg, nil, Options{}).Run(ctx, llm.ReaderStream(ctx, strings.NewReader(input), 4))

	got := drain(t, stream)
	require.Len(t, got, 1)
	errEvent, ok := got[0].(*events.ErrorEvent)
	require.True(t, ok)
	assert.ErrorIs(t, errEvent.Error, boom)
	assert.ErrorContains(t, errEvent.Error, `command "say"`)
}

func TestRunUnknownCommandWithoutFallback(t *testing.T) {
	stream := New(command.NewRegistry(), nil, Options{}).Run(context.Background(), channelStream(
		&llm.TextEvent{Content: `[{"dance": {}}]`},
	))

	got := drain(t, stream)
	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0].(*events.ErrorEvent).Error, command.ErrUnknownCommand)
}

func TestRunForwardsSourceErrors(t *testing.T) {
	failure := errors.New("connection reset")
	stream := New(command.NewRegistry(), nil, Options{}).Run(context.Background(), channelStream(
		&llm.TextEvent{Content: `[{"say": `},
		&events.ErrorEvent{Error: failure},
	))

	got := drain(t, stream)
	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0].(*events.ErrorEvent).Error, failure)
}

func TestRunCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	// The source never produces anything.
	source := make(chan events.Event)
	stream := New(command.NewRegistry(), nil, Options{}).Run(ctx, llm.LLMStream{Events: source})

	cancel()
	for event := range stream.Events {
		t.Fatalf("unexpected event %T after cancel", event)
	}
	<-stream.Done
}

func TestRunCancelIsNotAnError(t *testing.T) {
	for i := 0; i < 50; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		source := make(chan events.Event)
		stream := New(command.NewRegistry(), nil, Options{}).Run(ctx, llm.LLMStream{Events: source})

		// The reader is ready when the stream notices the cancellation.
		cancel()
		for event := range stream.Events {
			_, isErr := event.(*events.ErrorEvent)
			assert.False(t, isErr, "cancel reported as an error")
		}
		<-stream.Done
	}
}

func TestBuiltins(t *testing.T) {
	reg := command.NewRegistry()
	var out bytes.Buffer
	RegisterBuiltins(reg, &out, nil)

	assert.Equal(t, []string{"say", "think", "write"}, reg.Names())
	for i, help := range Builtins {
		assert.Equal(t, reg.Names()[i], help.Name)
	}

	require.NoError(t, reg.Dispatch(command.Command{Name: "think", Args: map[string]any{"thoughts": "hmm"}}))
	require.NoError(t, reg.Dispatch(command.Command{Name: "dance", Args: map[string]any{"speed": 2.0}}))
	assert.Equal(t, "(thinking) hmm\nunhandled command {\"dance\":{\"speed\":2}}\n", out.String())

	err := reg.Dispatch(command.Command{Name: "say", Args: map[string]any{}})
	assert.ErrorContains(t, err, `missing argument "text"`)

	err = reg.Dispatch(command.Command{Name: "write", Args: map[string]any{"filename": "x", "text": 3.0}})
	assert.ErrorContains(t, err, `argument "text" must be a string`)
}
