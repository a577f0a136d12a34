package main

import (
	"os"

	"github.com/relforge/relforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
