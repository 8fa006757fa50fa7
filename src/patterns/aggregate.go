package patterns

import (
	"math"
	"sort"
	"time"

	"journalapi/src/model"

	"github.com/shopspring/decimal"
)

// MinimumSampleSize is the smallest 90-day trade window the pattern
// analysis accepts. Callers reject smaller windows as insufficient data
// before any aggregator runs.
const MinimumSampleSize = 5

// PairStats is the per-instrument aggregate over a trade window.
type PairStats struct {
	Pair        string          `json:"pair"`
	TotalTrades int             `json:"total_trades"`
	Wins        int             `json:"wins"`
	Losses      int             `json:"losses"`
	WinRate     float64         `json:"win_rate"` // 0-100, one decimal
	TotalPnL    decimal.Decimal `json:"total_pnl"`
}

// WeekdayStats is the per-weekday aggregate over a trade window.
type WeekdayStats struct {
	Weekday     string  `json:"weekday"`
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
}

// SessionStats is the per-session aggregate over a trade window.
type SessionStats struct {
	Session     string  `json:"session"`
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
}

// WinRate returns wins/total as a percentage rounded to one decimal,
// and 0 when total is 0.
func WinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(wins)/float64(total)*1000) / 10
}

// AggregateByPair buckets trades by their instrument pair string, verbatim
// and case-sensitive as stored. Buckets are returned sorted by pair so
// repeated runs over the same window are byte-identical.
func AggregateByPair(trades []model.Trade) []PairStats {
	buckets := make(map[string]*PairStats)

	for _, t := range trades {
		s, ok := buckets[t.Pair]
		if !ok {
			s = &PairStats{Pair: t.Pair, TotalPnL: decimal.Zero}
			buckets[t.Pair] = s
		}
		s.TotalTrades++
		if t.IsWin() {
			s.Wins++
		}
		if t.IsLoss() {
			s.Losses++
		}
		s.TotalPnL = s.TotalPnL.Add(decimal.NewFromFloat(t.ProfitLoss))
	}

	out := make([]PairStats, 0, len(buckets))
	for _, s := range buckets {
		s.WinRate = WinRate(s.Wins, s.TotalTrades)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pair < out[j].Pair })
	return out
}

// AggregateByWeekday buckets trades by the weekday of their stored creation
// timestamp. No timezone normalization is applied: the weekday is taken
// from the timestamp exactly as persisted. That is a carry-over from the
// stats users already see; normalizing would silently shift reported
// weekdays for users away from UTC.
func AggregateByWeekday(trades []model.Trade) []WeekdayStats {
	buckets := make(map[time.Weekday]*WeekdayStats)

	for _, t := range trades {
		day := t.CreatedAt.Weekday()
		s, ok := buckets[day]
		if !ok {
			s = &WeekdayStats{Weekday: day.String()}
			buckets[day] = s
		}
		s.TotalTrades++
		if t.IsWin() {
			s.Wins++
		}
	}

	out := make([]WeekdayStats, 0, len(buckets))
	for day := time.Sunday; day <= time.Saturday; day++ {
		if s, ok := buckets[day]; ok {
			s.WinRate = WinRate(s.Wins, s.TotalTrades)
			out = append(out, *s)
		}
	}
	return out
}

// AggregateBySession buckets trades by the trading session derived from
// the UTC hour of their creation timestamp (see SessionForHour).
func AggregateBySession(trades []model.Trade) []SessionStats {
	buckets := make(map[string]*SessionStats)

	for _, t := range trades {
		session := SessionForHour(t.CreatedAt.UTC().Hour())
		s, ok := buckets[session]
		if !ok {
			s = &SessionStats{Session: session}
			buckets[session] = s
		}
		s.TotalTrades++
		if t.IsWin() {
			s.Wins++
		}
	}

	out := make([]SessionStats, 0, len(buckets))
	for _, session := range []string{SessionAsian, SessionLondon, SessionNewYork} {
		if s, ok := buckets[session]; ok {
			s.WinRate = WinRate(s.Wins, s.TotalTrades)
			out = append(out, *s)
		}
	}
	return out
}
