package main

import (
	"os"

	"github.com/FACorreiaa/mtr03-counter/cmd/mtr03/commands"
)

// main is the entry point for the mtr03 CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
