package service

import (
	"fmt"
	"strings"

	"rsi_bot/internal/models"
)

func formatSymbols(list []models.SymbolSummary) string {
	if len(list) == 0 {
		return "📭 Мониторов нет"
	}

	var b strings.Builder
	b.WriteString("📊 Мониторы:\n")
	for _, s := range list {
		pos := "flat"
		if s.InLong {
			pos = "long"
		}
		fmt.Fprintf(&b, "- %s %s [%s] %s rsi=%s (entry %s / exit %s)\n",
			strings.ToUpper(s.Symbol), s.Interval, s.State, pos, rsiText(s.RSI),
			f2(s.RsiConfig.Entry), f2(s.RsiConfig.Exit))
	}
	return b.String()
}

func rsiText(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return f2(*v)
}

func f2(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
