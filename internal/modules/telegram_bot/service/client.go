package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"rsi_bot/internal/models"
	"rsi_bot/internal/modules/config"
	"rsi_bot/pkg/logger"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SymbolLister - то, что бот показывает по /symbols.
type SymbolLister interface {
	List() []models.SymbolSummary
}

// Telegram - сервисные сообщения в один чат и пара read-only команд.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64

	mu      sync.Mutex
	symbols SymbolLister
	stop    chan struct{}
}

func NewTelegram(cfg *config.Config) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return newTelegram(b, cfg.Telegram.ChatID), nil
}

// NewTelegramWithEndpoint - для своего Bot API сервера, endpoint вида "http://host/bot%s/%s".
func NewTelegramWithEndpoint(token, endpoint string, chatID int64, client *http.Client) (*Telegram, error) {
	b, err := tgbot.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return newTelegram(b, chatID), nil
}

func newTelegram(b *tgbot.BotAPI, chatID int64) *Telegram {
	return &Telegram{
		bot:    b,
		chatID: chatID,
		stop:   make(chan struct{}),
	}
}

func (t *Telegram) Send(ctx context.Context, chatID int64, msg string) (tgbot.Message, error) {
	return t.bot.Send(tgbot.NewMessage(chatID, msg))
}

// SendService - в служебный чат; ошибки только логируем.
func (t *Telegram) SendService(ctx context.Context, format string, args ...any) {
	if t == nil || t.chatID == 0 {
		return
	}
	if _, err := t.Send(ctx, t.chatID, fmt.Sprintf(format, args...)); err != nil {
		logger.Warn("[TG] send service message: %v", err)
	}
}

// Start слушает апдейты до ctx.Done или Stop.
func (t *Telegram) Start(ctx context.Context, symbols SymbolLister) {
	t.mu.Lock()
	t.symbols = symbols
	t.mu.Unlock()

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stop:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.handleUpdate(ctx, update)
		}
	}
}

func (t *Telegram) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-t.stop:
		return
	default:
	}
	close(t.stop)
	t.bot.StopReceivingUpdates()
}

func (t *Telegram) lister() SymbolLister {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.symbols
}
