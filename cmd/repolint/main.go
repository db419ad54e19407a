package main

import (
	"os"

	"github.com/quaylabs/repolint/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
