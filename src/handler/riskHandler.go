package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"journalapi/src/auth"
	"journalapi/src/model"
	"journalapi/src/repository"
	"journalapi/src/risk"

	logger "github.com/sirupsen/logrus"
)

const (
	// recentLossWindow bounds the loss count feeding the risk rule.
	recentLossWindow = 2 * time.Hour

	// similarDayLookback bounds the informational similar-day sample.
	similarDayLookback = 30
)

type checkinReader interface {
	FindByDate(ctx context.Context, userID uint, at time.Time) (*model.DailyCheckIn, error)
	FindSince(ctx context.Context, userID uint, since time.Time) ([]model.DailyCheckIn, error)
}

type riskTradeReader interface {
	CountLossesSince(ctx context.Context, userID uint, since time.Time) (int, error)
	FindWindow(ctx context.Context, userID uint, from, to time.Time) ([]model.Trade, error)
}

// PreTradeRiskHandler returns a handler that assesses the authenticated
// user's current trading risk. The assessment is advisory and recomputed on
// every call; any fetch failure degrades to a medium default instead of
// blocking the caller.
func PreTradeRiskHandler(checkins checkinReader, trades riskTradeReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		now := time.Now().UTC()

		lossCount, err := trades.CountLossesSince(r.Context(), user.ID, now.Add(-recentLossWindow))
		if err != nil {
			logger.WithError(err).Warn("loss count fetch failed, returning fallback assessment")
			writeAssessment(w, risk.FallbackAssessment(0))
			return
		}

		checkin, err := checkins.FindByDate(r.Context(), user.ID, now)
		if err != nil {
			logger.WithError(err).Warn("check-in fetch failed, returning fallback assessment")
			writeAssessment(w, risk.FallbackAssessment(lossCount))
			return
		}

		var history []model.DailyCheckIn
		var window []model.Trade
		if checkin != nil {
			from := now.AddDate(0, 0, -similarDayLookback)

			history, err = checkins.FindSince(r.Context(), user.ID, from)
			if err != nil {
				logger.WithError(err).Warn("check-in history fetch failed, returning fallback assessment")
				writeAssessment(w, risk.FallbackAssessment(lossCount))
				return
			}

			window, err = trades.FindWindow(r.Context(), user.ID, from, now)
			if err != nil {
				logger.WithError(err).Warn("trade window fetch failed, returning fallback assessment")
				writeAssessment(w, risk.FallbackAssessment(lossCount))
				return
			}
		}

		writeAssessment(w, risk.Assess(checkin, lossCount, history, window))
	}
}

func writeAssessment(w http.ResponseWriter, assessment risk.Assessment) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(assessment); err != nil {
		logger.WithError(err).Error("failed to encode risk assessment")
	}
}

// DefaultPreTradeRiskHandler wires the handler to the production repository implementations.
func DefaultPreTradeRiskHandler() http.HandlerFunc {
	return PreTradeRiskHandler(
		repository.NewCheckInRepository(),
		repository.NewTradeRepositoryReadOnly(),
	)
}
