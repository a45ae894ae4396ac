package agent

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/isaacphi/cmdstream/internal/command"
	"github.com/isaacphi/cmdstream/internal/prompt"
)

// Builtins describes the commands installed by RegisterBuiltins.
var Builtins = []prompt.CommandHelp{
	{Name: "say", Description: "Show text to the user.", Args: []string{"text"}},
	{Name: "think", Description: "Record private reasoning. It is shown dimmed.", Args: []string{"thoughts"}},
	{Name: "write", Description: "Propose the full contents of a file. The file is printed, not written.", Args: []string{"filename", "text"}},
}

// RegisterBuiltins installs the say, think and write handlers, which print
// to w, and a fallback that reports commands nobody handles.
func RegisterBuiltins(reg *command.Registry, w io.Writer, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	reg.Register("say", func(cmd command.Command) error {
		text, err := stringArg(cmd, "text")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, text)
		return err
	})

	reg.Register("think", func(cmd command.Command) error {
		thoughts, ok := cmd.Args["thoughts"]
		if !ok {
			return fmt.Errorf("missing argument %q", "thoughts")
		}
		_, err := fmt.Fprintf(w, "(thinking) %s\n", render(thoughts))
		return err
	})

	reg.Register("write", func(cmd command.Command) error {
		filename, err := stringArg(cmd, "filename")
		if err != nil {
			return err
		}
		text, err := stringArg(cmd, "text")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "--- %s ---\n%s\n--- end %s ---\n", filename, text, filename)
		return err
	})

	reg.SetFallback(func(cmd command.Command) error {
		logger.Warn("no handler for command", "command", cmd.Name)
		_, err := fmt.Fprintf(w, "unhandled command %s\n", cmd)
		return err
	})
}

func stringArg(cmd command.Command, name string) (string, error) {
	v, ok := cmd.Args[name]
	if !ok {
		return "", fmt.Errorf("missing argument %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", name, v)
	}
	return s, nil
}

// render prints strings as they are and anything else as JSON.
func render(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
