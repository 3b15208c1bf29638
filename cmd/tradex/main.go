package main

import (
	"os"

	"github.com/rustyeddy/tradex/cmd/tradex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
