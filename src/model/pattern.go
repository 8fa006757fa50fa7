package model

import "time"

const (
	PatternPairBased    = "pair_based"
	PatternTimeBased    = "time_based"
	PatternSessionBased = "session_based"
)

// TradePattern is one statistical pattern surfaced by a batch analysis run
// over a 90-day trade window. Rows are read-only after creation; subsequent
// runs append new rows rather than replacing old ones.
type TradePattern struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	// AnalysisRunID groups every pattern produced by a single analysis run.
	AnalysisRunID string `gorm:"size:36;index" json:"analysis_run_id"`

	PatternType string `gorm:"size:30;not null;index" json:"pattern_type"` // pair_based | time_based | session_based
	Description string `gorm:"type:text" json:"description"`

	WinRate    float64 `json:"win_rate"`    // 0-100, one decimal
	SampleSize int     `json:"sample_size"` // >= 1
	Confidence float64 `json:"confidence"`  // 0-100

	Recommendation string `gorm:"type:text" json:"recommendation"`

	CreatedAt time.Time `json:"created_at"`
}

func (TradePattern) TableName() string {
	return "trade_patterns"
}
