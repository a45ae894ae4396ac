// genschema writes the JSON schema of cmdstream configuration files, for
// editors that validate *.cmdstream.json and *.cmdstream.yaml.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/isaacphi/cmdstream/internal/config"
)

func main() {
	var outFile string
	flag.StringVar(&outFile, "out", "cmdstream.schema.json", "Output file path")
	flag.Parse()

	var buf bytes.Buffer
	if err := config.WriteJSONSchema(&buf); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if dir := filepath.Dir(outFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating directory %s: %v\n", dir, err)
			os.Exit(1)
		}
	}

	if err := os.WriteFile(outFile, buf.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing schema to %s: %v\n", outFile, err)
		os.Exit(1)
	}
	fmt.Printf("Schema written to %s\n", outFile)
}
