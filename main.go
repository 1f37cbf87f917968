package main

import (
	"os"

	"github.com/devcompass/devcompass/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
