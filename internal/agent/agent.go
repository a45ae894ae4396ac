package agent

import (
	"log/slog"

	"github.com/isaacphi/cmdstream/internal/command"
)

// Options tune how an Agent reads each stream.
type Options struct {
	// ShowPartial emits a PartialCommandEvent whenever the command still
	// being streamed changes.
	ShowPartial bool
	// MaxBuffer bounds the size of a single command. Zero means no limit.
	MaxBuffer int
}

// "Agent" turns model output streams into dispatched commands
type Agent struct {
	dispatcher command.Dispatcher
	logger     *slog.Logger
	opts       Options
}

// New creates a new Agent that hands every complete command to d
func New(d command.Dispatcher, logger *slog.Logger, opts Options) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		dispatcher: d,
		logger:     logger,
		opts:       opts,
	}
}
