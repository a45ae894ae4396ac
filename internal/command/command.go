// Package command extracts agent commands from streamed LLM output.
//
// A command is a single-key JSON object whose value is an object:
//
//	{"say": {"text": "Hello"}}
//
// Several commands in one response are wrapped in a top-level array. Text
// arrives in chunks with no alignment to JSON tokens, so the package offers
// an Accumulator that dispatches each command as soon as its closing brace
// arrives, and Recover, which salvages what it can from an incomplete buffer.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownCommand is returned by a Registry for names with no handler.
	ErrUnknownCommand = errors.New("unknown command")
)

// Command is one parsed agent action
type Command struct {
	Name string
	Args map[string]any
}

// FromValue converts a decoded JSON value into a Command. The value must be
// an object with exactly one entry whose value is itself an object.
func FromValue(v any) (Command, bool) {
	obj, ok := v.(map[string]any)
	if !ok || len(obj) != 1 {
		return Command{}, false
	}
	for name, raw := range obj {
		args, ok := raw.(map[string]any)
		if !ok {
			return Command{}, false
		}
		return Command{Name: name, Args: args}, true
	}
	return Command{}, false
}

// MarshalJSON renders the command in its wire form.
func (c Command) MarshalJSON() ([]byte, error) {
	args := c.Args
	if args == nil {
		args = map[string]any{}
	}
	return json.Marshal(map[string]any{c.Name: args})
}

func (c Command) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%s(%v)", c.Name, c.Args)
	}
	return string(data)
}

// collect filters a decoded list down to the elements that are valid commands.
func collect(values []any) []Command {
	cmds := make([]Command, 0, len(values))
	for _, v := range values {
		if cmd, ok := FromValue(v); ok {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}
