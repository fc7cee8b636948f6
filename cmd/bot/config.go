package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/agalitsyn/flagutils"
	"github.com/agalitsyn/secret"

	"github.com/agalitsyn/telegram-todo-bot/internal/logging"
	"github.com/agalitsyn/telegram-todo-bot/internal/todo"
	"github.com/agalitsyn/telegram-todo-bot/version"
)

const EnvPrefix = "TODO_BOT"

type Config struct {
	Debug bool

	Log struct {
		Level string
	}

	Token secret.String

	DatabasePath string

	Bot struct {
		UpdateTimeout    int
		OwnerChatID      int64
		DeadlineWindow   time.Duration
		PersistCompleted bool
		Timezone         string
	}
}

func (c Config) String() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stdout, err)
		os.Exit(0)
	}
	return string(b)
}

func ParseFlags() Config {
	var cfg Config

	printVersion := flag.Bool("version", false, "Show version.")
	flag.StringVar(&cfg.Log.Level, "log-level", "info", "Log level (debug | info).")
	token := flag.String("token", "", "Telegram bot token.")
	flag.StringVar(&cfg.DatabasePath, "db", "todo.db", "Path to SQLite database file.")
	flag.IntVar(&cfg.Bot.UpdateTimeout, "update-timeout", 60, "Long polling timeout in seconds.")
	flag.Int64Var(&cfg.Bot.OwnerChatID, "owner-chat-id", 0, "Serve only this chat (0 serves any chat).")
	flag.DurationVar(&cfg.Bot.DeadlineWindow, "deadline-window", todo.DefaultDeadlineWindow, "Warn about tasks due within this window.")
	flag.BoolVar(&cfg.Bot.PersistCompleted, "persist-completed", true, "Keep completion marks across restarts.")
	flag.StringVar(&cfg.Bot.Timezone, "tz", "Local", "Time zone for due dates given without one.")

	flagutils.Prefix = EnvPrefix
	flagutils.Parse()
	flag.Parse()

	cfg.Debug = logging.IsDebug(cfg.Log.Level)
	cfg.Token = secret.NewString(*token)

	if *printVersion {
		fmt.Fprintln(os.Stdout, version.String())
		os.Exit(0)
	}

	return cfg
}
