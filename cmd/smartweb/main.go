package main

import (
	"os"

	"github.com/msto63/smartweb/cmd/smartweb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
