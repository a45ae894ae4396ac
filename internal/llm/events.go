package llm

import (
	"context"

	"github.com/isaacphi/cmdstream/internal/events"
)

// TextEvent represents a chunk of text from the LLM
type TextEvent struct {
	Content string
}

func (e TextEvent) Type() events.EventType {
	return events.EventTypeText
}

// MessageCompleteEvent is sent when the LLM response is complete
type MessageCompleteEvent struct {
	Content string
}

func (e MessageCompleteEvent) Type() events.EventType {
	return events.EventTypeMessageComplete
}

// LLMStream represents an ongoing LLM response stream
type LLMStream struct {
	Events <-chan events.Event
	Done   <-chan struct{}
}

// send delivers an event unless the context ends first.
func send(ctx context.Context, ch chan<- events.Event, e events.Event) bool {
	select {
	case ch <- e:
		return true
	case <-ctx.Done():
		return false
	}
}
