package main

import (
	"fmt"
	"os"

	"github.com/eshaffer321/statement-reconciler/internal/cli"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/config"
)

func main() {
	flags := cli.ParseServeFlags()
	cfg := config.LoadOrEnv_WithPath(flags.ConfigPath)

	if err := cli.RunServe(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "api server: %v\n", err)
		os.Exit(1)
	}
}
