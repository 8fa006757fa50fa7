package model

import "time"

const (
	TradeDirectionBuy  = "buy"
	TradeDirectionSell = "sell"
)

const (
	TradeOutcomeOpen      = "open"
	TradeOutcomeWin       = "win"
	TradeOutcomeLoss      = "loss"
	TradeOutcomeBreakeven = "breakeven"
)

const (
	TradeSourceManual     = "manual"
	TradeSourceScreenshot = "screenshot"
	TradeSourceVoice      = "voice"
	TradeSourceMT5        = "mt5"
)

// Trade represents one executed or open position in a user's journal.
type Trade struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index" json:"user_id"`

	Pair       string   `gorm:"size:20;not null;index" json:"pair"`
	Direction  string   `gorm:"size:10;not null" json:"direction"` // buy, sell
	EntryPrice float64  `json:"entry_price"`
	ExitPrice  *float64 `json:"exit_price,omitempty"`
	StopLoss   *float64 `json:"stop_loss,omitempty"`
	TakeProfit *float64 `json:"take_profit,omitempty"`
	Volume     float64  `json:"volume"`
	ProfitLoss float64  `json:"profit_loss"`

	// Outcome stays "open" until the position is closed. ProfitLoss is
	// zero while open.
	Outcome string `gorm:"size:20;not null;default:open;index" json:"outcome"`

	EmotionBefore string `gorm:"size:50" json:"emotion_before,omitempty"`
	EmotionAfter  string `gorm:"size:50" json:"emotion_after,omitempty"`
	Session       string `gorm:"size:20" json:"session,omitempty"`

	// BrokerTicket is the MT5 deal ticket used to reconcile synced trades.
	// Nil for manually logged trades.
	BrokerTicket *int64 `gorm:"index" json:"broker_ticket,omitempty"`
	Source       string `gorm:"size:20;not null;default:manual" json:"source"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName allows you to control the exact table name for trades.
func (Trade) TableName() string {
	return "trades"
}

// IsLoss reports whether the trade closed as a loss.
func (t Trade) IsLoss() bool {
	return t.Outcome == TradeOutcomeLoss
}

// IsWin reports whether the trade closed as a win.
func (t Trade) IsWin() bool {
	return t.Outcome == TradeOutcomeWin
}

// IsClosed reports whether the trade has an outcome other than open.
func (t Trade) IsClosed() bool {
	return t.Outcome != TradeOutcomeOpen
}
