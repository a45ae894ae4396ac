package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/isaacphi/cmdstream/internal/command"
	"github.com/isaacphi/cmdstream/internal/events"
	"github.com/isaacphi/cmdstream/internal/llm"
)

// Run reads text from in and dispatches every command it carries, as soon as
// the command is complete. The returned stream reports each dispatched
// command and ends with a StreamEndEvent, or with an events.ErrorEvent if the
// source or a handler failed. Once ctx is cancelled the stream closes without
// either. The caller owns in: cancel ctx to stop its
// producer after an error.
func (a *Agent) Run(ctx context.Context, in llm.LLMStream) AgentStream {
	id := uuid.New()
	eventsChan := make(chan events.Event)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(eventsChan)

		// A cancelled stream just ends; cancellation is the caller's doing.
		if err := a.consume(ctx, id, in, eventsChan); err != nil && ctx.Err() == nil {
			emit(ctx, eventsChan, &events.ErrorEvent{Error: err})
		}
	}()

	return AgentStream{ID: id, Events: eventsChan, Done: done}
}

func (a *Agent) consume(ctx context.Context, id uuid.UUID, in llm.LLMStream, eventsChan chan<- events.Event) error {
	logger := a.logger.With("stream", id.String())
	acc := command.NewAccumulator(a.dispatcher,
		command.WithLogger(logger),
		command.WithMaxBuffer(a.opts.MaxBuffer),
	)

	var content string
	var lastPartial string

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-in.Events:
			if !ok {
				return a.finish(ctx, id, acc, content, eventsChan)
			}

			switch e := event.(type) {
			case *llm.TextEvent:
				cmds, err := acc.Feed(e.Content)
				for _, cmd := range cmds {
					logger.Debug("dispatched command", "command", cmd.Name)
					if !emit(ctx, eventsChan, &CommandEvent{StreamID: id, Command: cmd}) {
						return ctx.Err()
					}
				}
				if err != nil {
					return fmt.Errorf("failed to dispatch command: %w", err)
				}

				if a.opts.ShowPartial {
					_, partial := acc.Snapshot()
					if partial != nil && partial.String() != lastPartial {
						lastPartial = partial.String()
						if !emit(ctx, eventsChan, &PartialCommandEvent{StreamID: id, Command: *partial}) {
							return ctx.Err()
						}
					}
				}

			case *llm.MessageCompleteEvent:
				content = e.Content

			case *events.ErrorEvent:
				return e.Error

			default:
				logger.Debug("ignoring stream event", "type", event.Type().String())
			}
		}
	}
}

// finish closes the accumulator once the source is exhausted.
func (a *Agent) finish(ctx context.Context, id uuid.UUID, acc *command.Accumulator, content string, eventsChan chan<- events.Event) error {
	before := acc.Dispatched()
	partial, closeErr := acc.Close()

	complete, _ := acc.Snapshot()
	for _, cmd := range complete[before:] {
		if !emit(ctx, eventsChan, &CommandEvent{StreamID: id, Command: cmd}) {
			return ctx.Err()
		}
	}
	if closeErr != nil {
		return fmt.Errorf("failed to dispatch command: %w", closeErr)
	}

	if partial != nil {
		a.logger.Info("stream ended inside a command", "stream", id.String(), "command", partial.Name)
	}

	emit(ctx, eventsChan, &StreamEndEvent{
		StreamID:   id,
		Dispatched: acc.Dispatched(),
		Partial:    partial,
		Content:    content,
	})
	return nil
}

func emit(ctx context.Context, ch chan<- events.Event, e events.Event) bool {
	select {
	case ch <- e:
		return true
	case <-ctx.Done():
		return false
	}
}
