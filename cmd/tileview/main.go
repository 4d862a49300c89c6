package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/eak1mov/go-tileloader/internal/config"
	"github.com/eak1mov/go-tileloader/internal/logger"
	"github.com/google/subcommands"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	cfg := config.Load()

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&planCmd{cfg: cfg}, "")
	subcommands.Register(&loadCmd{cfg: cfg}, "")
	subcommands.Register(&convertCmd{}, "")

	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := subcommands.Execute(ctx, log)
	stop()
	_ = log.Sync()
	os.Exit(int(status))
}
