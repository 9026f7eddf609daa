package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/statement-reconciler/internal/cli"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/logging"
)

func main() {
	flags := cli.ParseReconcileFlags()
	if missing := flags.Missing(); len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "missing required flags: %v\n", missing)
		fmt.Fprintln(os.Stderr, "usage: reconcile -external statement.json -internal transactions.json [-save] [-duplicates]")
		os.Exit(2)
	}

	// Load configuration
	cfg := config.LoadOrEnv_WithPath(flags.ConfigPath)

	// Setup logging (stderr keeps stdout for the report)
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerTo(os.Stderr, loggingCfg).With("system", "reconcile")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.RunReconcile(ctx, cfg, flags, os.Stdout, logger); err != nil {
		logger.Error("reconciliation failed", "error", err)
		os.Exit(1)
	}
}
