package helper

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NormSymbol - каноничный ключ реестра: "ETHUSDT" -> "ethusdt".
func NormSymbol(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ExchangeSymbol - как символ ждёт REST биржи: "ethusdt" -> "ETHUSDT".
func ExchangeSymbol(sym string) string {
	return strings.ToUpper(strings.TrimSpace(sym))
}

// NormTF приводит таймфрейм к виду Binance ("1H" -> "1h", "60m" -> "1h").
func NormTF(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "kline_")
	switch strings.ToLower(s) {
	case "60m", "1h":
		return "1h"
	}
	// "1M" (месяц) у Binance регистрозависимый
	if s == "1M" {
		return s
	}
	return strings.ToLower(s)
}

func TimeframeToDuration(tf string) time.Duration {
	switch NormTF(tf) {
	case "1s":
		return time.Second
	case "1m":
		return time.Minute
	case "3m":
		return 3 * time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "30m":
		return 30 * time.Minute
	case "1h":
		return time.Hour
	case "2h":
		return 2 * time.Hour
	case "4h":
		return 4 * time.Hour
	case "6h":
		return 6 * time.Hour
	case "8h":
		return 8 * time.Hour
	case "12h":
		return 12 * time.Hour
	case "1d":
		return 24 * time.Hour
	case "3d":
		return 72 * time.Hour
	case "1w":
		return 7 * 24 * time.Hour
	default:
		return 0 // неизвестный - End = Start
	}
}

// ValidInterval - поддерживает ли Binance такой kline-интервал.
func ValidInterval(tf string) bool {
	if NormTF(tf) == "1M" {
		return true
	}
	return TimeframeToDuration(tf) > 0
}

// FloorToStep округляет qty ВНИЗ до кратного step. Считаем в decimal,
// иначе 10.0/0.001 во float даёт 9999.999... и лишний шаг теряется или добавляется.
func FloorToStep(qty, step float64) decimal.Decimal {
	q := decimal.NewFromFloat(qty)
	if q.Sign() <= 0 {
		return decimal.Zero
	}
	if step <= 0 {
		return q
	}
	s := decimal.NewFromFloat(step)
	return q.Div(s).Floor().Mul(s)
}

// FloorQuoteQty: spend/price с округлением вниз под stepSize.
func FloorQuoteQty(spend, price, step float64) (decimal.Decimal, error) {
	if price <= 0 {
		return decimal.Zero, fmt.Errorf("price <= 0: %.10f", price)
	}
	raw := decimal.NewFromFloat(spend).Div(decimal.NewFromFloat(price))
	if step <= 0 {
		return raw, nil
	}
	s := decimal.NewFromFloat(step)
	return raw.Div(s).Floor().Mul(s), nil
}
