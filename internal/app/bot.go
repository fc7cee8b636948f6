package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agalitsyn/telegram-todo-bot/internal/logging"
	"github.com/agalitsyn/telegram-todo-bot/internal/model"
	"github.com/agalitsyn/telegram-todo-bot/internal/todo"
)

type BotConfig struct {
	UpdateTimeout  int
	DeadlineWindow time.Duration
	// OwnerChatID restricts the bot to a single chat when set.
	OwnerChatID int64
	Location    *time.Location
	// PersistCompleted stores completion marks next to the list.
	PersistCompleted bool
}

// Sender is the part of tgbotapi.BotAPI used to reply.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type chatState struct {
	store  *todo.Store
	filter model.FilterMode
}

type Bot struct {
	api      *tgbotapi.BotAPI
	sender   Sender
	username string

	cfg     BotConfig
	storage model.SnapshotStorage
	log     lgr.L
	clock   func() time.Time

	chats map[int64]*chatState
}

func NewBot(cfg BotConfig, token string, log lgr.L, storage model.SnapshotStorage) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("could not init bot api: %w", err)
	}
	if err := tgbotapi.SetLogger(logging.BotLogger{L: log}); err != nil {
		return nil, fmt.Errorf("could not set bot logger: %w", err)
	}

	b := newBot(cfg, api, api.Self.UserName, log, storage)
	b.api = api
	return b, nil
}

func newBot(cfg BotConfig, sender Sender, username string, log lgr.L, storage model.SnapshotStorage) *Bot {
	if cfg.DeadlineWindow <= 0 {
		cfg.DeadlineWindow = todo.DefaultDeadlineWindow
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Bot{
		sender:   sender,
		username: username,
		cfg:      cfg,
		storage:  storage,
		log:      log,
		clock:    time.Now,
		chats:    make(map[int64]*chatState),
	}
}

// Start handles updates one at a time until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case update := <-updates:
			b.HandleUpdate(ctx, update)

		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Logf("[DEBUG] stopped: %s", ctx.Err())
			return
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	chat := update.FromChat()
	if chat == nil {
		return
	}
	if b.cfg.OwnerChatID != 0 && chat.ID != b.cfg.OwnerChatID {
		b.log.Logf("[DEBUG] ignore update from chat id=%d", chat.ID)
		return
	}

	if update.CallbackQuery != nil {
		if err := b.handleCallbackQuery(ctx, update.CallbackQuery); err != nil {
			b.log.Logf("[ERROR] handling callback query: %s", err)
		}
		return
	}

	if update.Message == nil { // ignore any non-Message updates
		return
	}
	if err := b.handleMessage(ctx, update.Message); err != nil {
		b.log.Logf("[ERROR] handling message: %s", err)
	}
}

func (b *Bot) SetDebug(debug bool) {
	if b.api != nil {
		b.api.Debug = debug
	}
}

func (b *Bot) GetSelf() tgbotapi.User {
	return b.api.Self
}

// chat returns the state of a chat, loading its list on first use.
func (b *Bot) chat(ctx context.Context, chatID int64) *chatState {
	if st, ok := b.chats[chatID]; ok {
		return st
	}

	store := todo.Open(ctx, b.storage, listKey(chatID),
		todo.WithLogger(b.log),
		todo.WithClock(b.clock),
		todo.WithDeadlineWindow(b.cfg.DeadlineWindow),
		todo.WithCompletionPersistence(b.cfg.PersistCompleted),
		todo.WithDeadlineWarning(func(t model.Task) {
			b.warnDeadline(chatID, t)
		}),
	)
	st := &chatState{store: store, filter: model.FilterAll}
	b.chats[chatID] = st
	b.log.Logf("[DEBUG] opened list for chat id=%d, %d tasks", chatID, store.Len())
	return st
}

func (b *Bot) warnDeadline(chatID int64, t model.Task) {
	text := fmt.Sprintf("⏰ Heads up! %q is due soon: %s", t.Text, t.DueDate.In(b.cfg.Location).Format(model.DateLayout))
	if err := b.send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Logf("[WARN] could not send deadline warning: %s", err)
	}
}

func (b *Bot) send(c tgbotapi.Chattable) error {
	_, err := b.sender.Send(c)
	return err
}

func listKey(chatID int64) string {
	return "todos:" + strconv.FormatInt(chatID, 10)
}

// parseCommand extracts a command from "/cmd args" or "@bot /cmd args".
func parseCommand(msg *tgbotapi.Message, botUsername string) (string, string, bool) {
	if msg.IsCommand() {
		return msg.Command(), strings.TrimSpace(msg.CommandArguments()), true
	}

	prefix := "@" + botUsername + " /"
	if botUsername == "" || !strings.HasPrefix(msg.Text, prefix) {
		return "", "", false
	}
	cmd, args, _ := strings.Cut(strings.TrimPrefix(msg.Text, prefix), " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd, strings.TrimSpace(args), true
}
