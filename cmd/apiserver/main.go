// API server entry point for MacroCompare.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/MacroCompare/internal/config"
	"github.com/turtacn/MacroCompare/internal/interfaces/cli"
)

const defaultConfigPath = "configs/config.yaml"

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate

	// A missing file at the default location falls back to env and defaults;
	// an explicit -config must exist.
	path := *configPath
	if _, err := os.Stat(path); os.IsNotExist(err) && path == defaultConfigPath {
		path = ""
	}
	cfg, err := config.LoadOptional(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.RunServer(ctx, cfg, path); err != nil {
		stop()
		os.Exit(1)
	}
}

//Personal.AI order the ending
