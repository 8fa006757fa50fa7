package risk

import (
	"journalapi/src/model"
)

// ----- risk levels -----

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ----- classification thresholds -----

const (
	LowConfidenceBelow = 5
	ShortSleepBelow    = 6.0
	HighStressFrom     = 7
)

// Factors are the inputs that drove a classification, returned alongside
// the level so the UI can explain the advice.
type Factors struct {
	CheckedInToday  bool `json:"checked_in_today"`
	RecentLossCount int  `json:"recent_loss_count"`
	PoorMentalState bool `json:"poor_mental_state"`
}

// TodayState echoes the numbers from today's check-in for display.
type TodayState struct {
	Mood       string  `json:"mood"`
	Confidence int     `json:"confidence"`
	Stress     int     `json:"stress"`
	SleepHours float64 `json:"sleep_hours"`
	Focus      int     `json:"focus"`
}

// Assessment is the advisory output of the pre-trade assessor. It is never
// persisted; every view recomputes it.
type Assessment struct {
	RiskLevel   Level            `json:"risk_level"`
	Factors     Factors          `json:"factors"`
	Today       *TodayState      `json:"today,omitempty"`
	SimilarDays *SimilarDayStats `json:"similar_days,omitempty"`
}

// Classify applies the pre-trade risk rule:
//
//  1. no check-in today        -> medium
//  2. poor mental state AND recent losses -> high
//     exactly one of the two             -> medium
//     neither                            -> low
//
// Poor mental state means confidence < 5, sleep < 6h, or stress >= 7.
func Classify(checkin *model.DailyCheckIn, recentLossCount int) (Level, Factors) {
	factors := Factors{
		CheckedInToday:  checkin != nil,
		RecentLossCount: recentLossCount,
	}

	if checkin == nil {
		return LevelMedium, factors
	}

	poor := checkin.Confidence < LowConfidenceBelow ||
		checkin.SleepHours < ShortSleepBelow ||
		checkin.Stress >= HighStressFrom
	factors.PoorMentalState = poor

	hasRecentLosses := recentLossCount > 0

	switch {
	case poor && hasRecentLosses:
		return LevelHigh, factors
	case poor || hasRecentLosses:
		return LevelMedium, factors
	default:
		return LevelLow, factors
	}
}

// Assess classifies the risk and packages the supporting numbers for
// display. history and trades feed the informational similar-day sample;
// they never change the risk level itself.
func Assess(checkin *model.DailyCheckIn, recentLossCount int, history []model.DailyCheckIn, trades []model.Trade) Assessment {
	level, factors := Classify(checkin, recentLossCount)

	assessment := Assessment{
		RiskLevel: level,
		Factors:   factors,
	}

	if checkin != nil {
		assessment.Today = &TodayState{
			Mood:       checkin.Mood,
			Confidence: checkin.Confidence,
			Stress:     checkin.Stress,
			SleepHours: checkin.SleepHours,
			Focus:      checkin.Focus,
		}
		assessment.SimilarDays = SimilarDays(*checkin, history, trades)
	}

	return assessment
}

// FallbackAssessment is returned when any data fetch fails during the
// assessment. The assessor is advisory, not a gate, so it fails open to a
// medium default instead of blocking the caller from trading.
func FallbackAssessment(recentLossCount int) Assessment {
	return Assessment{
		RiskLevel: LevelMedium,
		Factors: Factors{
			RecentLossCount: recentLossCount,
		},
	}
}
