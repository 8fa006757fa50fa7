package model

import (
	"encoding/json"
	"time"
)

const (
	BehaviorRevengeTrading    = "revenge_trading"
	BehaviorOvertrading       = "overtrading"
	BehaviorLotSizeEscalation = "lot_size_escalation"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// TradingBehavior is one detected behavioral anomaly, persisted as an
// immutable audit record. Rows are only ever appended, never updated.
type TradingBehavior struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	BehaviorType string `gorm:"size:50;not null;index" json:"behavior_type"` // revenge_trading | overtrading | lot_size_escalation
	Severity     string `gorm:"size:20;not null" json:"severity"`            // low | medium | high

	// TradeIDs holds the ordered list of implicated trade identifiers as a
	// JSON array. Duplicates are possible when a trade participates in more
	// than one flagged sequence.
	TradeIDs string `gorm:"type:jsonb" json:"trade_ids"`

	Recommendation string `gorm:"type:text" json:"recommendation"`

	CreatedAt time.Time `json:"created_at"`
}

func (TradingBehavior) TableName() string {
	return "trading_behaviors"
}

// SetTradeIDs encodes the implicated trade identifiers into the jsonb column.
func (b *TradingBehavior) SetTradeIDs(ids []uint) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	b.TradeIDs = string(raw)
	return nil
}

// GetTradeIDs decodes the implicated trade identifiers from the jsonb column.
func (b *TradingBehavior) GetTradeIDs() ([]uint, error) {
	if b.TradeIDs == "" {
		return nil, nil
	}
	var ids []uint
	if err := json.Unmarshal([]byte(b.TradeIDs), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
