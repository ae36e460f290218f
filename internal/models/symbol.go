package models

import "time"

// MonitorState - жизненный цикл монитора символа.
type MonitorState string

const (
	StateCreated MonitorState = "CREATED"
	StateSeeding MonitorState = "SEEDING"
	StateLive    MonitorState = "LIVE"
	// StateFailed - фид исчерпал реконнекты, нужен перезапуск оператором
	StateFailed  MonitorState = "FAILED"
	StateStopped MonitorState = "STOPPED"
)

// SymbolParams - запрос на регистрацию монитора.
type SymbolParams struct {
	Symbol   string          `json:"symbol"`
	Interval string          `json:"interval"`
	InLong   *bool           `json:"inLong,omitempty"`
	BuyLimit *float64        `json:"buyLimit,omitempty"`
	Rsi      *RsiConfigPatch `json:"rsiConfig,omitempty"`

	EntryMessage string `json:"entryMessage,omitempty"`
	ExitMessage  string `json:"exitMessage,omitempty"`
}

// SymbolSummary - то, что отдаём в GET /symbols.
type SymbolSummary struct {
	Symbol       string       `json:"symbol"`
	Interval     string       `json:"interval"`
	InLong       bool         `json:"inLong"`
	BuyLimit     *float64     `json:"buyLimit"`
	RsiConfig    RsiConfig    `json:"rsiConfig"`
	State        MonitorState `json:"state"`
	RSI          *float64     `json:"rsi,omitempty"`
	EntryMessage string       `json:"entryMessage,omitempty"`
	ExitMessage  string       `json:"exitMessage,omitempty"`
}

// StatusPatch - PATCH /symbols/:symbol/status.
type StatusPatch struct {
	InLong   *bool    `json:"inLong"`
	BuyLimit *float64 `json:"buyLimit"`
}

const (
	StatusActive  = "active"
	StatusLong    = "long"
	StatusFlat    = "flat"
	StatusRemoved = "removed"
)

// SymbolStatus - запись в crypto_symbol_status.
type SymbolStatus struct {
	Symbol    string
	Status    string
	InLong    bool
	BuyTime   *time.Time
	SellTime  *time.Time
	UpdatedAt time.Time
}
