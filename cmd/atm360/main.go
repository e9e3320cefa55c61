package main

import (
	"os"

	"github.com/atm360/backend/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
