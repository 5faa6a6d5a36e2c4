package main

import (
	"os"

	"github.com/rustyeddy/lotboard/cmd/lotboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
