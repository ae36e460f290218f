package models

import "time"

// CandleTick - нормализованная свеча биржи.
type CandleTick struct {
	Symbol   string // lower-case, как ключ реестра
	Interval string

	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	Start time.Time
	End   time.Time

	// Closed == true когда интервал свечи полностью прошёл
	Closed bool
}
