package command

import (
	"encoding/json"
	"strings"
)

var newlineEscaper = strings.NewReplacer("\r", `\r`, "\n", `\n`)

// Recover extracts what it can from a buffer that may still be streaming.
//
// A buffer that parses as strict JSON is taken at face value: every element
// of a list is complete and there is no partial. Otherwise the buffer is
// retried with literal newlines escaped, then read tolerantly, and in both
// cases the last element is reported as the partial command and never as a
// complete one. Elements that are not valid commands are dropped, and a
// buffer that cannot be read at all yields nothing. Recover never fails.
func Recover(buffer string) (complete []Command, partial *Command) {
	if strings.TrimSpace(buffer) == "" {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal([]byte(buffer), &v); err == nil {
		switch t := v.(type) {
		case []any:
			return collect(t), nil
		case map[string]any:
			if cmd, ok := FromValue(t); ok {
				return []Command{cmd}, nil
			}
		}
		return nil, nil
	}

	if err := json.Unmarshal([]byte(newlineEscaper.Replace(buffer)), &v); err == nil {
		// A lone object that only needed its newlines escaped is finished.
		if obj, ok := v.(map[string]any); ok {
			if cmd, ok := FromValue(obj); ok {
				return []Command{cmd}, nil
			}
			return nil, nil
		}
		return splitLast(v)
	}

	v, err := parseTolerant(buffer)
	if err != nil {
		return nil, nil
	}
	return splitLast(v)
}

// splitLast treats every element but the last as complete and the last as
// the command still in flight.
func splitLast(v any) ([]Command, *Command) {
	values, ok := v.([]any)
	if !ok {
		values = []any{v}
	}
	if len(values) == 0 {
		return nil, nil
	}

	complete := collect(values[:len(values)-1])
	if cmd, ok := FromValue(values[len(values)-1]); ok {
		return complete, &cmd
	}
	return complete, nil
}

// ParseDocument parses a complete document, expanding raw text blocks first.
func ParseDocument(text string) (complete []Command, partial *Command) {
	return Recover(ExpandRaw(text))
}
