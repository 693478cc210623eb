package main

import (
	"context"
	"os"

	"github.com/asynkron/toolcore/internal/cli"
)

// main bootstraps the toolcore CLI.
func main() {
	os.Exit(cli.Run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
