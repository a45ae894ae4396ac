package events

// EventType defines the type of streaming event
type EventType int

const (
	EventTypeText EventType = iota
	EventTypeMessageComplete
	EventTypeCommand
	EventTypePartialCommand
	EventTypeStreamEnd
	EventTypeError
)

func (t EventType) String() string {
	switch t {
	case EventTypeText:
		return "text"
	case EventTypeMessageComplete:
		return "message_complete"
	case EventTypeCommand:
		return "command"
	case EventTypePartialCommand:
		return "partial_command"
	case EventTypeStreamEnd:
		return "stream_end"
	case EventTypeError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is the interface for all streaming events
type Event interface {
	Type() EventType
}

// ErrorEvent represents an error during processing
type ErrorEvent struct {
	Error error
}

func (e ErrorEvent) Type() EventType {
	return EventTypeError
}
