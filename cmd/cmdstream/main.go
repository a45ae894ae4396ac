package main

import "github.com/isaacphi/cmdstream/internal/ui/cli"

func main() {
	cli.Execute()
}
