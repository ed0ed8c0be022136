// Package main is the entry point for the parcel package manager.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/parcel/cmd/parcel/commands"
	"go.trai.ch/parcel/internal/app"
	"go.trai.ch/parcel/internal/core/domain"
	_ "go.trai.ch/parcel/internal/wiring"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		// Write directly to stderr
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	if closer, ok := components.Logger.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	// 2. Interface - CLI
	cli := commands.New(components.App)
	cli.SetArgs(args)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		if reported(err) {
			return 1
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}

// reported reports whether the command already printed the failure itself.
func reported(err error) bool {
	return errors.Is(err, domain.ErrBatchFailed) || errors.Is(err, domain.ErrValidation)
}
