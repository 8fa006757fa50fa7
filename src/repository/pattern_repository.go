package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"journalapi/src/database"
	"journalapi/src/model"
)

// PatternRepository persists trade patterns produced by analysis runs.
// Runs append; they never replace earlier rows.
type PatternRepository struct {
	db *gorm.DB
}

// NewPatternRepository creates a new repository instance.
func NewPatternRepository() *PatternRepository {
	logger.WithField("component", "PatternRepository").
		Info("Creating new PatternRepository with MainDB")

	return &PatternRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *PatternRepository) WithDB(db *gorm.DB) *PatternRepository {
	return &PatternRepository{db: db}
}

// CreateBatch appends every pattern from one analysis run.
func (r *PatternRepository) CreateBatch(
	ctx context.Context,
	patterns []*model.TradePattern,
) error {

	if len(patterns) == 0 {
		return nil
	}

	logger.WithFields(map[string]interface{}{
		"repo":   "PatternRepository",
		"op":     "CreateBatch",
		"run_id": patterns[0].AnalysisRunID,
		"rows":   len(patterns),
	}).Info("Persisting analysis patterns")

	return r.db.WithContext(ctx).Create(patterns).Error
}

// FindByUser fetches a user's patterns, newest first.
func (r *PatternRepository) FindByUser(
	ctx context.Context,
	userID uint,
	limit int,
) ([]model.TradePattern, error) {

	if limit <= 0 {
		limit = 50 // default safety limit
	}

	var rows []model.TradePattern

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "PatternRepository",
			"op":      "FindByUser",
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch trade patterns")

		return nil, err
	}

	return rows, nil
}

// FindByRun fetches every pattern created by one analysis run.
func (r *PatternRepository) FindByRun(
	ctx context.Context,
	runID string,
) ([]model.TradePattern, error) {

	var rows []model.TradePattern

	err := r.db.WithContext(ctx).
		Where("analysis_run_id = ?", runID).
		Order("id ASC").
		Find(&rows).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "PatternRepository",
			"op":     "FindByRun",
			"run_id": runID,
		}).WithError(err).Error("Failed to fetch patterns by run")

		return nil, err
	}

	return rows, nil
}
