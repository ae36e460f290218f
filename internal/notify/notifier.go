package notify

import (
	"context"
	"fmt"

	"rsi_bot/pkg/logger"
)

// Log - уведомления оператору, когда Telegram не настроен: просто в лог.
type Log struct{}

func (Log) SendService(_ context.Context, format string, args ...any) {
	logger.Info("[NOTIFY] %s", fmt.Sprintf(format, args...))
}
