package main

import (
	"os"

	"github.com/kopong25/freightquick/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
