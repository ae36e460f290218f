package models

// Instrument - метаданные спотовой пары, нужные для размера ордера.
type Instrument struct {
	Symbol     string
	BaseAsset  string
	QuoteAsset string

	StepSize float64 // LOT_SIZE.stepSize
	MinQty   float64 // LOT_SIZE.minQty
}

type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// OrderRequest - заявка в биржу; Quantity уже округлена под stepSize.
type OrderRequest struct {
	Symbol   string
	Side     Side
	Type     OrderType
	Quantity string
	Price    string // только для LIMIT
}

// OrderResult - ответ биржи по ордеру.
type OrderResult struct {
	OrderID       int64   `json:"orderId"`
	ClientOrderID string  `json:"clientOrderId"`
	Symbol        string  `json:"symbol"`
	Side          Side    `json:"side"`
	Status        string  `json:"status"`
	ExecutedQty   float64 `json:"executedQty"`
	QuoteQty      float64 `json:"cummulativeQuoteQty"`
}

const OrderStatusFilled = "FILLED"
