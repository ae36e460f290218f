package models

import "time"

// Crossing - результат детектора на одном сэмпле.
type Crossing int

const (
	CrossNone Crossing = iota
	CrossEnter
	CrossExit
)

func (c Crossing) String() string {
	switch c {
	case CrossEnter:
		return "ENTER"
	case CrossExit:
		return "EXIT"
	default:
		return "NONE"
	}
}

// Side как у биржи: "BUY"/"SELL" или пустая строка.
type Side string

const (
	SideNone Side = ""
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Side возвращает сторону ордера для пересечения.
func (c Crossing) Side() Side {
	switch c {
	case CrossEnter:
		return SideBuy
	case CrossExit:
		return SideSell
	default:
		return SideNone
	}
}

// AlertType - тип сигнала для релея алертов.
func (c Crossing) AlertType() string {
	switch c {
	case CrossEnter:
		return "ENTER-LONG"
	case CrossExit:
		return "EXIT-LONG"
	default:
		return ""
	}
}

// Signal - одно пересечение порога, которое уходит в исполнитель.
type Signal struct {
	Symbol   string
	Interval string
	Crossing Crossing
	Price    float64
	RSI      float64
	Time     time.Time
	// Comment - непрозрачный токен стратегии для релея
	Comment string
	// BuyLimit - сколько quote-валюты можно потратить на вход, 0 = без лимита
	BuyLimit float64
}

// AlertPayload - то, что логируем и шлём в релей.
type AlertPayload struct {
	Symbol  string  `json:"symbol"`
	Type    string  `json:"type"`
	Price   float64 `json:"price"`
	Time    int64   `json:"time"`
	Comment string  `json:"comment"`
}
