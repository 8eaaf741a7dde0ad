// Package main is the entry point for the fathom-scraper services and CLI.
package main

import (
	"os"

	"github.com/user/fathom-scraper/cmd/fathom-scraper/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
