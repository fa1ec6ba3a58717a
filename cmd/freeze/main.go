package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jakoblorz/go-freeze/internal/cli"
	"github.com/jakoblorz/go-freeze/internal/models"
)

func main() {
	// Ctrl+C cancels the running child process; the build still cleans up
	// its staging directory before returning.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.Execute(ctx)
	stop()

	os.Exit(models.ExitCode(err))
}
