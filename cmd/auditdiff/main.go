package main

import (
	"os"

	"github.com/fabricflow/fabricflow/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
