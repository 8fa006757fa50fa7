package insights

import (
	"fmt"
	"strings"

	"journalapi/src/model"
	"journalapi/src/patterns"
)

// offlineConfidence is the confidence stamped on templated insights. They
// are plain arithmetic over the aggregate tables, so it stays modest.
const offlineConfidence = 60

// OfflineSummary builds a templated summary from the aggregate tables
// alone. Used whenever the hosted summarizer is unavailable or returned
// output we could not parse.
func OfflineSummary(req Request) *Summary {
	summary := &Summary{}

	if best := bestPair(req.PairStats); best != nil {
		summary.Insights = append(summary.Insights, Insight{
			PatternType:    model.PatternPairBased,
			Description:    fmt.Sprintf("%s is your strongest pair with a %.1f%% win rate over %d trades.", best.Pair, best.WinRate, best.TotalTrades),
			WinRate:        best.WinRate,
			SampleSize:     best.TotalTrades,
			Confidence:     offlineConfidence,
			Recommendation: fmt.Sprintf("Lean on your edge in %s; it has been your most consistent instrument.", best.Pair),
		})
	}

	if worst := worstWeekday(req.WeekdayStats); worst != nil {
		summary.Insights = append(summary.Insights, Insight{
			PatternType:    model.PatternTimeBased,
			Description:    fmt.Sprintf("%s is your weakest day with a %.1f%% win rate over %d trades.", worst.Weekday, worst.WinRate, worst.TotalTrades),
			WinRate:        worst.WinRate,
			SampleSize:     worst.TotalTrades,
			Confidence:     offlineConfidence,
			Recommendation: fmt.Sprintf("Consider reducing size or sitting out on %ss until the pattern improves.", worst.Weekday),
		})
	}

	if best := bestSession(req.SessionStats); best != nil {
		summary.Insights = append(summary.Insights, Insight{
			PatternType:    model.PatternSessionBased,
			Description:    fmt.Sprintf("The %s session is your best with a %.1f%% win rate over %d trades.", best.Session, best.WinRate, best.TotalTrades),
			WinRate:        best.WinRate,
			SampleSize:     best.TotalTrades,
			Confidence:     offlineConfidence,
			Recommendation: fmt.Sprintf("Concentrate your trading during the %s session where your results are strongest.", best.Session),
		})
	}

	var lines []string
	for _, in := range summary.Insights {
		lines = append(lines, in.Description)
	}
	if len(lines) == 0 {
		summary.Narrative = "Not enough closed trades to surface a pattern yet. Keep journaling."
	} else {
		summary.Narrative = strings.Join(lines, " ")
	}

	return summary
}

func bestPair(stats []patterns.PairStats) *patterns.PairStats {
	var best *patterns.PairStats
	for i := range stats {
		if best == nil || stats[i].WinRate > best.WinRate {
			best = &stats[i]
		}
	}
	return best
}

func worstWeekday(stats []patterns.WeekdayStats) *patterns.WeekdayStats {
	var worst *patterns.WeekdayStats
	for i := range stats {
		if worst == nil || stats[i].WinRate < worst.WinRate {
			worst = &stats[i]
		}
	}
	return worst
}

func bestSession(stats []patterns.SessionStats) *patterns.SessionStats {
	var best *patterns.SessionStats
	for i := range stats {
		if best == nil || stats[i].WinRate > best.WinRate {
			best = &stats[i]
		}
	}
	return best
}
