package main

import (
	"os"

	"github.com/spigell/resume-selector/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
