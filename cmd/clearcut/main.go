package main

import (
	"os"

	"github.com/clearcut-labs/clearcut/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
