package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"

	"github.com/agalitsyn/telegram-todo-bot/internal/cli"
	"github.com/agalitsyn/telegram-todo-bot/internal/logging"
	"github.com/agalitsyn/telegram-todo-bot/internal/storage/sqlite"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := ParseFlags()
	logging.Setup(cfg.Log.Level, os.Stderr)
	if cfg.NoColor {
		color.NoColor = true
	}
	lgr.Printf("[DEBUG] running with config %s", cfg)

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o700); err != nil {
		fmt.Fprintf(os.Stderr, "error: could not create data dir: %s\n", err)
		return cli.ExitStorage
	}
	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return cli.ExitStorage
	}
	defer db.Close()

	runner := cli.NewRunner(cli.Config{
		ListKey:          cfg.ListKey,
		Quiet:            cfg.Quiet,
		DeadlineWindow:   cfg.DeadlineWindow,
		PersistCompleted: cfg.PersistCompleted,
	}, sqlite.NewSnapshotStorage(db), lgr.Default())

	return runner.Run(ctx, flag.Args(), os.Stdout, os.Stderr)
}
