// Command hostelctl is the terminal client for the hostel ticket desk.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/campusfix/hostel-desk/internal/config"
	"github.com/campusfix/hostel-desk/internal/observability"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hostelctl: %v\n", err)
		return 1
	}
	// Logs go to stderr so they never mix with command output.
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Logger.Level = "warn"
	}
	if os.Getenv("LOG_ENCODING") == "" {
		cfg.Logger.Encoding = "console"
	}
	cfg.Logger.Output = "stderr"

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hostelctl: init logger: %v\n", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hostelctl: %v\n", err)
		return 1
	}
	defer a.close()

	if err := a.guard(ctx, a.root().execute(ctx, args, os.Stderr)); err != nil {
		fmt.Fprintf(os.Stderr, "hostelctl: %v\n", err)
		return 1
	}
	return 0
}
