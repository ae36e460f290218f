// rsi - разовый прогон: тянет свечи с Binance, считает RSI и показывает,
// где сработали бы пороги. Для подбора entry/exit без запуска бота.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"rsi_bot/internal/helper"
	"rsi_bot/internal/models"
	binance "rsi_bot/internal/modules/binance_client/service"
	"rsi_bot/internal/modules/config"
	strategy "rsi_bot/internal/modules/strategy/service"
	"rsi_bot/pkg/logger"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var (
		symbol   = flag.String("symbol", "ethusdt", "spot symbol")
		interval = flag.String("interval", "5m", "kline interval")
		limit    = flag.Int("limit", 200, "closed candles to fetch")
		period   = flag.Int("period", cfg.Rsi.Period, "RSI period")
		entry    = flag.Float64("entry", cfg.Rsi.Entry, "entry threshold")
		exit     = flag.Float64("exit", cfg.Rsi.Exit, "exit threshold")
	)
	flag.Parse()

	if err = logger.Init(cfg.Log.Level, cfg.Log.JSON); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	th := models.RsiConfig{Period: *period, Entry: *entry, Exit: *exit}
	if err = th.Validate(); err != nil {
		logger.Fatal("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := binance.NewClientFromConfig(cfg)
	ticks, err := client.Klines(ctx, helper.NormSymbol(*symbol), helper.NormTF(*interval), *limit)
	if err != nil {
		logger.Fatal("klines: %v", err)
	}

	rsi := strategy.NewRSI(th.Period)
	var prev, curr strategy.Reading
	inLong := false
	crossings := 0
	for _, t := range ticks {
		v, ok := rsi.Next(t.Close)
		prev, curr = curr, strategy.ValueOf(v, ok)
		switch c := strategy.Evaluate(prev, curr, th, inLong); c {
		case models.CrossEnter, models.CrossExit:
			crossings++
			inLong = c == models.CrossEnter
			fmt.Printf("%s  %-5s price=%.8f rsi %.2f -> %.2f\n", t.Start.UTC().Format(time.RFC3339), c, t.Close, prev.Value, curr.Value)
		}
	}

	last := "n/a"
	if curr.Valid {
		last = fmt.Sprintf("%.2f", curr.Value)
	}
	fmt.Printf("%s %s: candles=%d crossings=%d rsi=%s inLong=%t\n", helper.ExchangeSymbol(*symbol), *interval, len(ticks), crossings, last, inLong)
}
