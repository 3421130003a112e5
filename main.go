package main

import (
	"os"

	"github.com/BearMapper/BearDeterrenceMap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
