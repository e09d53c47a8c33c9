package main

import (
	"os"

	"github.com/tobyjamez/UDA/cmd/uda/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
