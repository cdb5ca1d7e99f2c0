package main

import (
	"os"

	"postbox/cmd/postbox/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
