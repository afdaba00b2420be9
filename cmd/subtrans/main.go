// Command subtrans is the CLI companion to subtransd. It talks to the
// daemon's HTTP API to submit translation jobs, inspect their progress,
// correct segments, and approve results.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
