// Package main provides the entry point of the notlikethat terminal widget.
package main

import (
	"context"
	"os"

	"notlikethat/cmd/notlikethat/commands"
)

func main() {
	os.Exit(commands.Execute(context.Background(), commands.NewApp(), os.Args[1:]))
}
