package main

import (
	"os"

	"github.com/smartspend-dev/smartspend/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
