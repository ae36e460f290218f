package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"rsi_bot/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{APIKey: "key", APISecret: "secret", BaseURL: srv.URL})
}

func TestKlinesDropsOpenCandle(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 30, 0, time.UTC)
	minute := int64(time.Minute / time.Millisecond)
	first := now.Add(-3 * time.Minute).Truncate(time.Minute).UnixMilli()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "ETHUSDT" || q.Get("interval") != "1m" || q.Get("limit") != "4" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, "[")
		for i := int64(0); i < 4; i++ {
			open := first + i*minute
			if i > 0 {
				_, _ = io.WriteString(w, ",")
			}
			_, _ = fmt.Fprintf(w, `[%d,"1.0","2.0","0.5","%d.5","10.0",%d,"10.0",5,"1.0","1.0","0"]`,
				open, 100+i, open+minute-1)
		}
		_, _ = io.WriteString(w, "]")
	})
	c.now = func() time.Time { return now }

	ticks, err := c.Klines(context.Background(), "ethusdt", "1m", 4)
	if err != nil {
		t.Fatalf("Klines: %v", err)
	}
	if len(ticks) != 3 {
		t.Fatalf("expected 3 closed candles, got %d", len(ticks))
	}
	for i, tk := range ticks {
		if want := float64(100+i) + 0.5; tk.Close != want {
			t.Fatalf("candle %d: expected close %v, got %v", i, want, tk.Close)
		}
		if !tk.Closed || tk.Symbol != "ethusdt" {
			t.Fatalf("candle %d: unexpected %+v", i, tk)
		}
	}
}

func TestKlinesPropagatesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"code":-1121,"msg":"Invalid symbol."}`)
	})

	if _, err := c.Klines(context.Background(), "nope", "1m", 10); err == nil {
		t.Fatal("expected error")
	}
}

func TestBalances(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/account" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-MBX-APIKEY") != "key" {
			t.Errorf("api key header missing")
		}
		_, _ = io.WriteString(w, `{"balances":[{"asset":"USDT","free":"123.45","locked":"1"},{"asset":"ETH","free":"0.5","locked":"0"}]}`)
	})

	bal, err := c.Balances(context.Background())
	if err != nil {
		t.Fatalf("Balances: %v", err)
	}
	if bal["USDT"] != 123.45 || bal["ETH"] != 0.5 {
		t.Fatalf("unexpected balances %v", bal)
	}
}

func TestInstrument(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/exchangeInfo" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"symbols":[{"symbol":"ETHUSDT","status":"TRADING","baseAsset":"ETH","quoteAsset":"USDT",
			"filters":[{"filterType":"PRICE_FILTER","tickSize":"0.01"},{"filterType":"LOT_SIZE","minQty":"0.00010000","maxQty":"9000.00000000","stepSize":"0.00010000"}]}]}`)
	})

	inst, err := c.Instrument(context.Background(), "ethusdt")
	if err != nil {
		t.Fatalf("Instrument: %v", err)
	}
	want := models.Instrument{Symbol: "ETHUSDT", BaseAsset: "ETH", QuoteAsset: "USDT", StepSize: 0.0001, MinQty: 0.0001}
	if inst != want {
		t.Fatalf("expected %+v, got %+v", want, inst)
	}
}

func TestPlaceOrderMarketAndLimit(t *testing.T) {
	var got url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v3/order" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		_ = r.ParseForm()
		got = r.Form
		_, _ = io.WriteString(w, `{"symbol":"ETHUSDT","orderId":28,"clientOrderId":"abc","transactTime":1507725176595,
			"price":"0","origQty":"0.5","executedQty":"0.5","cummulativeQuoteQty":"1000.5","status":"FILLED",
			"timeInForce":"GTC","type":"MARKET","side":"BUY"}`)
	})

	res, err := c.PlaceOrder(context.Background(), models.OrderRequest{
		Symbol: "ethusdt", Side: models.SideBuy, Quantity: "0.5",
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if res.OrderID != 28 || res.Status != models.OrderStatusFilled || res.ExecutedQty != 0.5 || res.QuoteQty != 1000.5 {
		t.Fatalf("unexpected result %+v", res)
	}
	if got.Get("type") != "MARKET" || got.Get("quantity") != "0.5" || got.Get("side") != "BUY" || got.Get("symbol") != "ETHUSDT" {
		t.Fatalf("unexpected form %v", got)
	}
	if got.Get("newClientOrderId") == "" {
		t.Fatal("client order id must be set")
	}

	_, err = c.PlaceOrder(context.Background(), models.OrderRequest{
		Symbol: "ethusdt", Side: models.SideBuy, Type: models.OrderTypeLimit, Quantity: "0.5", Price: "2000",
	})
	if err != nil {
		t.Fatalf("PlaceOrder limit: %v", err)
	}
	if got.Get("type") != "LIMIT" || got.Get("timeInForce") != "GTC" || got.Get("price") != "2000" {
		t.Fatalf("unexpected limit form %v", got)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	c := NewClient(Options{})
	cases := []models.OrderRequest{
		{Symbol: "ethusdt", Side: models.SideBuy},
		{Symbol: "ethusdt", Side: "HOLD", Quantity: "1"},
		{Symbol: "ethusdt", Side: models.SideBuy, Type: models.OrderTypeLimit, Quantity: "1"},
	}
	for i, req := range cases {
		if _, err := c.PlaceOrder(context.Background(), req); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}
