package main

import (
	"os"

	"github.com/zjrosen/breathe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
