package main

import (
	"os"

	"finitefield.org/dex-web/cmd/dex/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
