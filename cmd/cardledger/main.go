package main

import (
	"os"

	"github.com/cardledger/cardledger/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
