package service

import (
	"fmt"
	"strconv"
	"time"

	"rsi_bot/internal/models"

	"github.com/bytedance/sonic"
)

// kline-событие стрима <symbol>@kline_<interval>.
// Ключи, отличающиеся только регистром (e/E, l/L, v/V, q/Q), объявлены все:
// без точного совпадения декодер берёт поле без учёта регистра и падает на типе.
type klineEvent struct {
	Event     string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Kline     struct {
		Start        int64  `json:"t"`
		End          int64  `json:"T"`
		Symbol       string `json:"s"`
		Interval     string `json:"i"`
		FirstTradeID int64  `json:"f"`
		LastTradeID  int64  `json:"L"`
		Open         string `json:"o"`
		Close        string `json:"c"`
		High         string `json:"h"`
		Low          string `json:"l"`
		Volume       string `json:"v"`
		Trades       int64  `json:"n"`
		Closed       bool   `json:"x"`
		QuoteVolume  string `json:"q"`
		TakerBase    string `json:"V"`
		TakerQuote   string `json:"Q"`
		Ignore       string `json:"B"`
	} `json:"k"`
}

// parseKline: ok=false для незакрытых свечей и чужих событий.
func parseKline(msg []byte) (models.CandleTick, bool, error) {
	var ev klineEvent
	if err := sonic.Unmarshal(msg, &ev); err != nil {
		return models.CandleTick{}, false, fmt.Errorf("decode frame: %w", err)
	}
	if ev.Event != "kline" || !ev.Kline.Closed {
		return models.CandleTick{}, false, nil
	}

	closep, err := strconv.ParseFloat(ev.Kline.Close, 64)
	if err != nil {
		return models.CandleTick{}, false, fmt.Errorf("parse close %q: %w", ev.Kline.Close, err)
	}
	if closep <= 0 {
		return models.CandleTick{}, false, fmt.Errorf("non-positive close %v", closep)
	}
	open, _ := strconv.ParseFloat(ev.Kline.Open, 64)
	high, _ := strconv.ParseFloat(ev.Kline.High, 64)
	low, _ := strconv.ParseFloat(ev.Kline.Low, 64)
	vol, _ := strconv.ParseFloat(ev.Kline.Volume, 64)

	return models.CandleTick{
		Interval: ev.Kline.Interval,
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closep,
		Volume:   vol,
		Start:    time.UnixMilli(ev.Kline.Start),
		End:      time.UnixMilli(ev.Kline.End),
		Closed:   true,
	}, true, nil
}
