package shared

import (
	"fmt"
	"io"
	"os"
)

// OpenInput opens the file named by the first argument, or returns stdin
// when there is none or it is "-".
func OpenInput(args []string, stdin io.Reader) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

// ReadInput reads the whole input named by args.
func ReadInput(args []string, stdin io.Reader) (string, error) {
	r, err := OpenInput(args, stdin)
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}
