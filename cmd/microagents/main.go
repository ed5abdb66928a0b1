// Command microagents serves the air-quality, document, and video agents
// over HTTP and runs them one-shot from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/54b3r/microagents-go/cmd/microagents/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
