package risk

import (
	"math"

	"journalapi/src/model"
	"journalapi/src/utils"
)

// SimilarTolerance is the band, in units of each scale, within which two
// check-ins count as similar on confidence, sleep hours and stress.
const SimilarTolerance = 1.0

// SimilarDayStats is the historical sample computed from days whose
// check-in resembled today's. Purely informational.
type SimilarDayStats struct {
	WinRate    float64 `json:"win_rate"` // 0-100, one decimal
	AvgPnL     float64 `json:"avg_pnl"`
	SampleSize int     `json:"sample_size"` // closed trades on similar days
	DaysFound  int     `json:"days_found"`
}

// SimilarDays finds check-ins within +-1 on confidence, sleep hours and
// stress simultaneously (excluding today's own check-in), then computes the
// win rate and average P&L of the closed trades logged on those days.
// Returns nil when no similar day with closed trades exists.
func SimilarDays(today model.DailyCheckIn, history []model.DailyCheckIn, trades []model.Trade) *SimilarDayStats {
	similar := make(map[int64]struct{})

	for _, c := range history {
		if utils.SameDay(c.CheckinDate, today.CheckinDate) {
			continue
		}
		if math.Abs(float64(c.Confidence-today.Confidence)) > SimilarTolerance {
			continue
		}
		if math.Abs(c.SleepHours-today.SleepHours) > SimilarTolerance {
			continue
		}
		if math.Abs(float64(c.Stress-today.Stress)) > SimilarTolerance {
			continue
		}
		similar[utils.DayStart(c.CheckinDate).Unix()] = struct{}{}
	}

	if len(similar) == 0 {
		return nil
	}

	var wins, closed int
	var totalPnL float64
	for _, t := range trades {
		if !t.IsClosed() {
			continue
		}
		if _, ok := similar[utils.DayStart(t.CreatedAt).Unix()]; !ok {
			continue
		}
		closed++
		totalPnL += t.ProfitLoss
		if t.IsWin() {
			wins++
		}
	}

	if closed == 0 {
		return nil
	}

	return &SimilarDayStats{
		WinRate:    math.Round(float64(wins)/float64(closed)*1000) / 10,
		AvgPnL:     totalPnL / float64(closed),
		SampleSize: closed,
		DaysFound:  len(similar),
	}
}
