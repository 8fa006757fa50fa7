package behavior

import (
	"fmt"
	"time"

	"journalapi/src/model"
)

// ----- detection thresholds -----

const (
	RevengeMaxGap      = 15 * time.Minute
	RevengeVolumeRatio = 1.3

	OvertradingWindow    = 2 * time.Hour
	OvertradingMaxTrades = 10
	OvertradingEvidence  = 10

	EscalationMinTrades = 3
	EscalationRatio     = 1.5

	// MissingVolumeDefault substitutes an unset volume in the escalation
	// check. The revenge check treats a zero denominator as 1 instead, to
	// keep the ratio bounded.
	MissingVolumeDefault = 0.01
)

// Finding is one detected behavioral anomaly over a trade window.
type Finding struct {
	BehaviorType   string `json:"behavior_type"`
	Severity       string `json:"severity"`
	TradeIDs       []uint `json:"trade_ids"`
	Recommendation string `json:"recommendation"`
}

// Run executes all detectors over a newest-first trade window and returns
// the findings. Detectors are pure functions; now is injected so callers
// and tests control the clock.
func Run(trades []model.Trade, now time.Time) []Finding {
	findings := make([]Finding, 0, 3)

	if flagged := DetectRevengeTrading(trades); len(flagged) > 0 {
		findings = append(findings, Finding{
			BehaviorType:   model.BehaviorRevengeTrading,
			Severity:       model.SeverityHigh,
			TradeIDs:       flagged,
			Recommendation: "You re-entered the market quickly and with larger size after a loss. Step away for at least 15 minutes after a losing trade before taking the next one.",
		})
	}

	if flagged, evidence := DetectOvertrading(trades, now); flagged {
		findings = append(findings, Finding{
			BehaviorType:   model.BehaviorOvertrading,
			Severity:       model.SeverityMedium,
			TradeIDs:       evidence,
			Recommendation: "You placed more than 10 trades in the last 2 hours. Slow down and review your plan before the next entry.",
		})
	}

	if ratio, ok := DetectLotSizeEscalation(trades); ok {
		ids := make([]uint, 0, EscalationMinTrades)
		for i := 0; i < EscalationMinTrades; i++ {
			ids = append(ids, trades[i].ID)
		}
		findings = append(findings, Finding{
			BehaviorType:   model.BehaviorLotSizeEscalation,
			Severity:       model.SeverityHigh,
			TradeIDs:       ids,
			Recommendation: fmt.Sprintf("Your position size grew %.1fx across your last three trades. Escalating lot size is a common sign of chasing losses.", ratio),
		})
	}

	return findings
}
