package main

import (
	"os"

	"github.com/scoutlint/scout/internal/adapters/inbound/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
