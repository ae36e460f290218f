package service

import (
	"context"

	"rsi_bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = "Команды:\n/symbols - активные мониторы\n/help - эта подсказка"

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}
	// чужие чаты игнорируем
	if t.chatID != 0 && msg.Chat.ID != t.chatID {
		logger.Warn("[TG] command /%s from unknown chat %d ignored", msg.Command(), msg.Chat.ID)
		return
	}

	var reply string
	switch msg.Command() {
	case "symbols":
		reply = t.symbolsText()
	case "start", "help":
		reply = helpText
	default:
		return
	}
	if _, err := t.Send(ctx, msg.Chat.ID, reply); err != nil {
		logger.Warn("[TG] reply to /%s: %v", msg.Command(), err)
	}
}

func (t *Telegram) symbolsText() string {
	l := t.lister()
	if l == nil {
		return "📭 Реестр ещё не готов"
	}
	return formatSymbols(l.List())
}
