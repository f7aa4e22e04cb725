package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rileyhilliard/sysdash/internal/cli"
)

// Version info set via ldflags at build time:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)

	// SIGTERM stops the dashboard and closes any SSH tunnel on the way out.
	// Interrupts inside the TUI arrive as key presses instead.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.ExecuteContext(ctx)
	stop()
	os.Exit(code)
}
