package agent

import (
	"github.com/google/uuid"
	"github.com/isaacphi/cmdstream/internal/command"
	"github.com/isaacphi/cmdstream/internal/events"
)

// CommandEvent is sent after a command was dispatched
type CommandEvent struct {
	StreamID uuid.UUID
	Command  command.Command
}

func (e CommandEvent) Type() events.EventType {
	return events.EventTypeCommand
}

// PartialCommandEvent carries the best known state of the command still
// being streamed. It is for display only and is never dispatched.
type PartialCommandEvent struct {
	StreamID uuid.UUID
	Command  command.Command
}

func (e PartialCommandEvent) Type() events.EventType {
	return events.EventTypePartialCommand
}

// StreamEndEvent is the last event of a stream that ended without error
type StreamEndEvent struct {
	StreamID   uuid.UUID
	Dispatched int
	// Partial is the command that was cut off by the end of the stream.
	Partial *command.Command
	// Content is the full model reply, when the source reported it.
	Content string
}

func (e StreamEndEvent) Type() events.EventType {
	return events.EventTypeStreamEnd
}

// AgentStream represents an ongoing command stream
type AgentStream struct {
	ID     uuid.UUID
	Events <-chan events.Event
	Done   <-chan struct{}
}
