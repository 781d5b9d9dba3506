package main

import (
	"fmt"
	"os"

	"pdf-slide-synth/cmd/slidesynth/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
