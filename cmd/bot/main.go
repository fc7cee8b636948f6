package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/agalitsyn/telegram-todo-bot/internal/app"
	"github.com/agalitsyn/telegram-todo-bot/internal/logging"
	"github.com/agalitsyn/telegram-todo-bot/internal/storage/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := ParseFlags()
	logging.Setup(cfg.Log.Level, os.Stdout, cfg.Token.Unmask())

	if cfg.Debug {
		lgr.Printf("[DEBUG] running with config")
		fmt.Fprintln(os.Stdout, cfg.String())
	}

	loc, err := time.LoadLocation(cfg.Bot.Timezone)
	if err != nil {
		lgr.Fatalf("[ERROR] invalid time zone %q: %v", cfg.Bot.Timezone, err)
	}

	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		lgr.Fatalf("[ERROR] could not open database: %v", err)
	}
	defer db.Close()

	bot, err := app.NewBot(
		app.BotConfig{
			UpdateTimeout:    cfg.Bot.UpdateTimeout,
			DeadlineWindow:   cfg.Bot.DeadlineWindow,
			OwnerChatID:      cfg.Bot.OwnerChatID,
			Location:         loc,
			PersistCompleted: cfg.Bot.PersistCompleted,
		},
		cfg.Token.Unmask(),
		lgr.Default(),
		sqlite.NewSnapshotStorage(db),
	)
	if err != nil {
		lgr.Fatalf("[ERROR] could not init bot: %v", err)
	}
	bot.SetDebug(cfg.Debug)
	lgr.Printf("[INFO] authorized as %s", bot.GetSelf().UserName)

	bot.Start(ctx)
}
