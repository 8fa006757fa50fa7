package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"journalapi/src/database"
	"journalapi/src/model"
	"journalapi/src/utils"
)

// CheckInRepository handles persistence of daily mental-state check-ins.
type CheckInRepository struct {
	db *gorm.DB
}

// NewCheckInRepository creates a new repository instance.
func NewCheckInRepository() *CheckInRepository {
	logger.WithField("component", "CheckInRepository").
		Info("Creating new CheckInRepository with MainDB")

	return &CheckInRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *CheckInRepository) WithDB(db *gorm.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// Upsert writes today's check-in, replacing any existing row for the same
// (user, date). The check-in date is truncated to midnight UTC first so
// the unique index always applies.
func (r *CheckInRepository) Upsert(
	ctx context.Context,
	checkin *model.DailyCheckIn,
) error {

	checkin.CheckinDate = utils.DayStart(checkin.CheckinDate)

	logger.WithFields(map[string]interface{}{
		"repo":    "CheckInRepository",
		"op":      "Upsert",
		"user_id": checkin.UserID,
		"date":    checkin.CheckinDate.Format("2006-01-02"),
	}).Debug("Upserting daily check-in")

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "checkin_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"mood", "confidence", "stress", "sleep_hours", "focus", "note", "updated_at",
			}),
		}).
		Create(checkin).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "CheckInRepository",
			"op":      "Upsert",
			"user_id": checkin.UserID,
		}).WithError(err).Error("Failed to upsert daily check-in")

		return err
	}

	return nil
}

// FindByDate fetches a user's check-in for the calendar day containing at.
// Returns (nil, nil) if the user did not check in that day.
func (r *CheckInRepository) FindByDate(
	ctx context.Context,
	userID uint,
	at time.Time,
) (*model.DailyCheckIn, error) {

	day := utils.DayStart(at)

	var checkin model.DailyCheckIn

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND checkin_date = ?", userID, day).
		First(&checkin).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo":    "CheckInRepository",
				"op":      "FindByDate",
				"user_id": userID,
				"date":    day.Format("2006-01-02"),
			}).Debug("No check-in for date")
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":    "CheckInRepository",
			"op":      "FindByDate",
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch check-in by date")

		return nil, err
	}

	return &checkin, nil
}

// FindSince fetches a user's check-ins on or after since, oldest first.
func (r *CheckInRepository) FindSince(
	ctx context.Context,
	userID uint,
	since time.Time,
) ([]model.DailyCheckIn, error) {

	var checkins []model.DailyCheckIn

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND checkin_date >= ?", userID, utils.DayStart(since)).
		Order("checkin_date ASC").
		Find(&checkins).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "CheckInRepository",
			"op":      "FindSince",
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch check-in history")

		return nil, err
	}

	return checkins, nil
}
