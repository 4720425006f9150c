package main

import (
	"os"

	"github.com/aikawam/vcwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
