package main

import (
	"os"

	"github.com/felixgeelhaar/remedy/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
