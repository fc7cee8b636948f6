package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agalitsyn/flagutils"

	"github.com/agalitsyn/telegram-todo-bot/internal/cli"
	"github.com/agalitsyn/telegram-todo-bot/internal/todo"
)

const (
	EnvPrefix = "TODO"
	AppName   = "todo"
)

type Config struct {
	Log struct {
		Level string
	}

	DatabasePath     string
	ListKey          string
	Quiet            bool
	NoColor          bool
	DeadlineWindow   time.Duration
	PersistCompleted bool
}

func (c Config) String() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(b)
}

func ParseFlags() Config {
	var cfg Config

	flag.StringVar(&cfg.Log.Level, "log-level", "info", "Log level (debug | info).")
	flag.StringVar(&cfg.DatabasePath, "db", DefaultDatabasePath(), "Path to SQLite database file.")
	flag.StringVar(&cfg.ListKey, "list", cli.DefaultListKey, "Name of the list to work with.")
	flag.BoolVar(&cfg.Quiet, "quiet", false, "Do not print the list after changes.")
	flag.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	flag.DurationVar(&cfg.DeadlineWindow, "deadline-window", todo.DefaultDeadlineWindow, "Warn about tasks due within this window.")
	flag.BoolVar(&cfg.PersistCompleted, "persist-completed", true, "Keep completion marks between runs.")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <command> [args]\n\nFlags:\n", AppName)
		flag.PrintDefaults()
		fmt.Fprintf(flag.CommandLine.Output(), "\nRun '%s help' for the list of commands.\n", AppName)
	}

	flagutils.Prefix = EnvPrefix
	flagutils.Parse()
	flag.Parse()

	return cfg
}

// DefaultDatabasePath uses XDG_DATA_HOME if set, otherwise $HOME/.local/share.
func DefaultDatabasePath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName, "todo.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "todo.db"
	}
	return filepath.Join(home, ".local", "share", AppName, "todo.db")
}
