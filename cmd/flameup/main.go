// Package main is the entry point for the flameup CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/raoulx24/flameup/cmd/flameup/commands"
	"github.com/raoulx24/flameup/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()

	if err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}
