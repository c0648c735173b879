package main

import (
	"os"

	"github.com/hedgineer/eqindex/cmd/eqindex/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
