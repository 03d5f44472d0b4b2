package main

import (
	"os"

	"networth/cmd/networth/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
