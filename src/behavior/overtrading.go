package behavior

import (
	"time"

	"journalapi/src/model"
)

// DetectOvertrading counts trades whose timestamp falls within the last
// 2 hours relative to now (not relative to the window's own end). More than
// 10 such trades flags the window; the evidence list is the first 10 trades
// of the window in its current newest-first order.
//
// The threshold is fixed, there is no per-user adaptive baseline.
func DetectOvertrading(trades []model.Trade, now time.Time) (bool, []uint) {
	cutoff := now.Add(-OvertradingWindow)

	count := 0
	for _, t := range trades {
		if t.CreatedAt.After(cutoff) {
			count++
		}
	}

	if count <= OvertradingMaxTrades {
		return false, nil
	}

	limit := OvertradingEvidence
	if limit > len(trades) {
		limit = len(trades)
	}
	evidence := make([]uint, 0, limit)
	for i := 0; i < limit; i++ {
		evidence = append(evidence, trades[i].ID)
	}

	return true, evidence
}
