package main

import (
	"fmt"
	"os"

	"adaptive-voice/cmd/avr/cmd"
	"adaptive-voice/internal/config"
)

func main() {
	// Environment bootstrap is non-blocking; the cloud engine fails fast
	// later if a provider actually needs a missing key.
	if _, err := config.InitializeConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration warning: %v\n", err)
	}

	cmd.Execute()
}
