package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agalitsyn/telegram-todo-bot/internal/model"
	"github.com/agalitsyn/telegram-todo-bot/internal/render"
	"github.com/agalitsyn/telegram-todo-bot/version"
)

const helpText = `📝 To-do list

Send any text to add it as a task, or use:
/add text | due | target - add a task, dates as YYYY-MM-DD HH:MM
/edit N text - change the text of task N
/done N - mark task N done or undone
/del N - delete task N
/move N M - move task N to position M
/list [all|completed|pending] - show tasks
/status - counters`

var errUsage = errors.New("usage")

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	command, args, ok := parseCommand(msg, b.username)
	if !ok {
		// plain text is a new task
		if strings.TrimSpace(msg.Text) == "" {
			return nil
		}
		command, args = "add", msg.Text
	}

	var err error
	chatID := msg.Chat.ID
	switch command {
	case "start", "help":
		return b.helpCommand(chatID)
	case "add":
		err = b.addCommand(ctx, chatID, args)
	case "edit":
		err = b.editCommand(ctx, chatID, args)
	case "done":
		err = b.doneCommand(ctx, chatID, args)
	case "del", "delete", "rm":
		err = b.deleteCommand(ctx, chatID, args)
	case "move", "mv":
		err = b.moveCommand(ctx, chatID, args)
	case "list", "ls":
		err = b.listCommand(ctx, chatID, args)
	case "status":
		return b.statusCommand(ctx, chatID)
	default:
		return b.send(tgbotapi.NewMessage(chatID, "Unknown command, see /help."))
	}

	if errors.Is(err, errUsage) {
		return b.send(tgbotapi.NewMessage(chatID, err.Error()))
	}
	return err
}

func (b *Bot) helpCommand(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, helpText)
	msg.ReplyMarkup = mainMenu()
	return b.send(msg)
}

func (b *Bot) statusCommand(ctx context.Context, chatID int64) error {
	st := b.chat(ctx, chatID)

	var sb strings.Builder
	sb.WriteString("🤖 Working\n")
	render.Counters(&sb, st.store, render.Plain{})
	fmt.Fprintf(&sb, "Version: %s", version.String())
	return b.send(tgbotapi.NewMessage(chatID, sb.String()))
}

func (b *Bot) addCommand(ctx context.Context, chatID int64, args string) error {
	parts := strings.Split(args, "|")
	draft := model.NewDraft(parts[0])

	var err error
	if len(parts) > 1 {
		if draft.DueDate, err = model.ParseOptionalDate(parts[1], b.cfg.Location); err != nil {
			return fmt.Errorf("%w: due date: %s", errUsage, err)
		}
	}
	if len(parts) > 2 {
		if draft.CompletionTargetDate, err = model.ParseOptionalDate(parts[2], b.cfg.Location); err != nil {
			return fmt.Errorf("%w: target date: %s", errUsage, err)
		}
	}

	st := b.chat(ctx, chatID)
	if _, ok := st.store.Add(ctx, draft); ok {
		st.filter = model.FilterAll
	}
	return b.sendList(chatID, st)
}

func (b *Bot) editCommand(ctx context.Context, chatID int64, args string) error {
	index, text, err := parsePosition(args)
	if err != nil {
		return fmt.Errorf("%w: /edit N text", errUsage)
	}

	st := b.chat(ctx, chatID)
	if t, ok := st.store.At(index); ok {
		// no text means the edit was cancelled
		st.store.Edit(ctx, t.ID, text)
	}
	return b.sendList(chatID, st)
}

func (b *Bot) doneCommand(ctx context.Context, chatID int64, args string) error {
	index, _, err := parsePosition(args)
	if err != nil {
		return fmt.Errorf("%w: /done N", errUsage)
	}

	st := b.chat(ctx, chatID)
	if t, ok := st.store.At(index); ok {
		st.store.ToggleComplete(ctx, t.ID)
	}
	return b.sendList(chatID, st)
}

func (b *Bot) deleteCommand(ctx context.Context, chatID int64, args string) error {
	index, _, err := parsePosition(args)
	if err != nil {
		return fmt.Errorf("%w: /del N", errUsage)
	}

	st := b.chat(ctx, chatID)
	if t, ok := st.store.At(index); ok {
		st.store.Delete(ctx, t.ID)
	}
	return b.sendList(chatID, st)
}

func (b *Bot) moveCommand(ctx context.Context, chatID int64, args string) error {
	from, rest, err := parsePosition(args)
	if err != nil {
		return fmt.Errorf("%w: /move N M", errUsage)
	}
	to, _, err := parsePosition(rest)
	if err != nil {
		return fmt.Errorf("%w: /move N M", errUsage)
	}

	st := b.chat(ctx, chatID)
	if drag, ok := st.store.BeginDrag(from); ok {
		drag.Hover(ctx, to)
		drag.Drop()
	}
	return b.sendList(chatID, st)
}

func (b *Bot) listCommand(ctx context.Context, chatID int64, args string) error {
	mode, err := model.ParseFilterMode(args)
	if err != nil {
		return fmt.Errorf("%w: /list [all|completed|pending]", errUsage)
	}

	st := b.chat(ctx, chatID)
	st.filter = mode
	return b.sendList(chatID, st)
}

// sendList re-renders the chat's list with its current filter.
func (b *Bot) sendList(chatID int64, st *chatState) error {
	var sb strings.Builder
	render.Counters(&sb, st.store, render.Plain{})
	sb.WriteString("\n")
	render.List(&sb, st.store, render.Options{
		Mode:     st.filter,
		Now:      b.clock(),
		Window:   st.store.DeadlineWindow(),
		Location: b.cfg.Location,
		Styler:   render.Plain{},
	})

	msg := tgbotapi.NewMessage(chatID, strings.TrimRight(sb.String(), "\n"))
	msg.ReplyMarkup = filterKeyboard(st.filter)
	return b.send(msg)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := b.sender.Request(callback); err != nil {
		b.log.Logf("[WARN] answering callback query: %s", err)
	}
	if query.Message == nil {
		return nil
	}

	chatID := query.Message.Chat.ID
	switch data := query.Data; {
	case strings.HasPrefix(data, filterPrefix):
		mode, err := model.ParseFilterMode(strings.TrimPrefix(data, filterPrefix))
		if err != nil {
			return fmt.Errorf("bad callback data %q: %w", data, err)
		}
		st := b.chat(ctx, chatID)
		st.filter = mode
		return b.sendList(chatID, st)
	case data == "cmd_status":
		return b.statusCommand(ctx, chatID)
	case data == "cmd_help":
		return b.helpCommand(chatID)
	default:
		return nil
	}
}

// parsePosition reads a 1-based list position and returns it as an index with the remaining text.
func parsePosition(args string) (int, string, error) {
	args = strings.TrimSpace(args)
	head, rest, _ := strings.Cut(args, " ")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, "", fmt.Errorf("invalid position %q", head)
	}
	return n - 1, strings.TrimSpace(rest), nil
}
