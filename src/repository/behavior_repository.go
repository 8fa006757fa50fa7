package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"journalapi/src/database"
	"journalapi/src/model"
)

// BehaviorRepository persists detected behavioral anomalies. Findings are
// immutable audit records: rows are only appended, never updated.
type BehaviorRepository struct {
	db *gorm.DB
}

// NewBehaviorRepository creates a new repository instance.
func NewBehaviorRepository() *BehaviorRepository {
	logger.WithField("component", "BehaviorRepository").
		Info("Creating new BehaviorRepository with MainDB")

	return &BehaviorRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *BehaviorRepository) WithDB(db *gorm.DB) *BehaviorRepository {
	return &BehaviorRepository{db: db}
}

// Create appends one finding.
func (r *BehaviorRepository) Create(
	ctx context.Context,
	finding *model.TradingBehavior,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":     "BehaviorRepository",
		"op":       "Create",
		"user_id":  finding.UserID,
		"type":     finding.BehaviorType,
		"severity": finding.Severity,
	}).Info("Persisting behavior finding")

	return r.db.WithContext(ctx).Create(finding).Error
}

// FindLatestByUser fetches the user's most recent findings, newest first.
func (r *BehaviorRepository) FindLatestByUser(
	ctx context.Context,
	userID uint,
	limit int,
) ([]model.TradingBehavior, error) {

	if limit <= 0 {
		limit = 20 // default safety limit
	}

	var findings []model.TradingBehavior

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&findings).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "BehaviorRepository",
			"op":      "FindLatestByUser",
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch behavior findings")

		return nil, err
	}

	return findings, nil
}
