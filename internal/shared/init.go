package shared

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/isaacphi/cmdstream/internal/agent"
	"github.com/isaacphi/cmdstream/internal/command"
	"github.com/isaacphi/cmdstream/internal/config"
	"github.com/isaacphi/cmdstream/internal/events"
	"github.com/isaacphi/cmdstream/internal/llm"
	"github.com/isaacphi/cmdstream/internal/ui/tui"
)

// InitializeAgent builds a registry holding the built-in handlers, which
// print to out, and an agent reading streams with the parser settings of cfg.
func InitializeAgent(cfg *config.ConfigSchema, out io.Writer, logger *slog.Logger) (*agent.Agent, *command.Registry) {
	reg := command.NewRegistry()
	agent.RegisterBuiltins(reg, out, logger)

	a := agent.New(reg, logger, agent.Options{
		ShowPartial: cfg.Parser.ShowPartial,
		MaxBuffer:   cfg.Parser.MaxBuffer,
	})
	return a, reg
}

type RunOptions struct {
	Title  string
	Config *config.ConfigSchema
	Logger *slog.Logger
	// Out receives handler output, ErrOut partial commands and notices.
	Out    io.Writer
	ErrOut io.Writer
	TUI    bool
}

// RunStream dispatches the commands in source and reports progress either as
// plain text or in the terminal UI.
func RunStream(ctx context.Context, source llm.LLMStream, opts RunOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.TUI {
		a, _ := InitializeAgent(opts.Config, io.Discard, opts.Logger)
		return tui.Run(ctx, opts.Title, a.Run(ctx, source))
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := opts.ErrOut
	if errOut == nil {
		errOut = os.Stderr
	}

	a, _ := InitializeAgent(opts.Config, out, opts.Logger)
	stream := a.Run(ctx, source)
	for event := range stream.Events {
		switch e := event.(type) {
		case *agent.PartialCommandEvent:
			fmt.Fprintf(errOut, "… %s\n", e.Command)
		case *agent.StreamEndEvent:
			if e.Partial != nil {
				fmt.Fprintf(errOut, "stream ended inside command: %s\n", e.Partial)
			}
		case *events.ErrorEvent:
			cancel()
			<-stream.Done
			return e.Error
		}
	}
	return nil
}
