package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"journalapi/src/auth"
	"journalapi/src/model"
	"journalapi/src/repository"

	logger "github.com/sirupsen/logrus"
)

type checkinUpserter interface {
	Upsert(ctx context.Context, checkin *model.DailyCheckIn) error
}

// checkinPayload is the inbound shape of a daily mental-state check-in.
type checkinPayload struct {
	Mood       string  `json:"mood"`
	Confidence int     `json:"confidence"`
	Stress     int     `json:"stress"`
	SleepHours float64 `json:"sleep_hours"`
	Focus      int     `json:"focus"`
	Note       string  `json:"note,omitempty"`
}

// UpsertCheckInHandler returns a handler that records today's check-in for
// the authenticated user. A second submission on the same day replaces the
// first.
func UpsertCheckInHandler(repo checkinUpserter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload checkinPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid check-in payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		if payload.Confidence < 1 || payload.Confidence > 10 {
			http.Error(w, "confidence must be between 1 and 10", http.StatusBadRequest)
			return
		}
		if payload.Stress < 1 || payload.Stress > 10 {
			http.Error(w, "stress must be between 1 and 10", http.StatusBadRequest)
			return
		}
		if payload.SleepHours < 0 || payload.SleepHours > 24 {
			http.Error(w, "sleep_hours must be between 0 and 24", http.StatusBadRequest)
			return
		}
		if payload.Focus < 0 || payload.Focus > 10 {
			http.Error(w, "focus must be between 0 and 10", http.StatusBadRequest)
			return
		}

		checkin := &model.DailyCheckIn{
			UserID:      user.ID,
			CheckinDate: time.Now().UTC(),
			Mood:        strings.TrimSpace(payload.Mood),
			Confidence:  payload.Confidence,
			Stress:      payload.Stress,
			SleepHours:  payload.SleepHours,
			Focus:       payload.Focus,
			Note:        payload.Note,
		}

		if err := repo.Upsert(r.Context(), checkin); err != nil {
			logger.WithError(err).Error("failed to upsert check-in")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(checkin); err != nil {
			logger.WithError(err).Error("failed to encode check-in response")
		}
	}
}

// DefaultUpsertCheckInHandler wires the handler to the production repository implementation.
func DefaultUpsertCheckInHandler() http.HandlerFunc {
	return UpsertCheckInHandler(repository.NewCheckInRepository())
}
