// Package main provides the entry point for the tdiff CLI tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tdiff/tdiff/internal/cmd"
	"github.com/tdiff/tdiff/pkg/logging"
)

// Version information populated by goreleaser.
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := cmd.New(version)
	if err := root.ExecuteContext(ctx); err != nil {
		logging.Err(err).Msg("tdiff failed")
		os.Exit(1)
	}
}
