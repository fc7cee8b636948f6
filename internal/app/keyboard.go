package app

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agalitsyn/telegram-todo-bot/internal/model"
	"github.com/agalitsyn/telegram-todo-bot/internal/render"
)

const filterPrefix = "filter:"

// filterKeyboard has one button per filter, the active one marked.
func filterKeyboard(active model.FilterMode) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, mode := range model.FilterModes {
		label := render.FilterLabel(mode)
		if mode == active {
			label = "• " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, filterPrefix+string(mode)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func mainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Tasks", filterPrefix+string(model.FilterAll)),
			tgbotapi.NewInlineKeyboardButtonData("⏳ Pending", filterPrefix+string(model.FilterPending)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Status", "cmd_status"),
		),
	)
}
