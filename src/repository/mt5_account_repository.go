package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"journalapi/src/database"
	"journalapi/src/model"
)

// MT5AccountRepository handles linked broker accounts and their sync state.
type MT5AccountRepository struct {
	db *gorm.DB
}

// NewMT5AccountRepository creates a new repository instance.
func NewMT5AccountRepository() *MT5AccountRepository {
	logger.WithField("component", "MT5AccountRepository").
		Info("Creating new MT5AccountRepository with MainDB")

	return &MT5AccountRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *MT5AccountRepository) WithDB(db *gorm.DB) *MT5AccountRepository {
	return &MT5AccountRepository{db: db}
}

// GetByUser fetches the broker account linked by a user.
// Returns (nil, nil) if the user has not linked one.
func (r *MT5AccountRepository) GetByUser(
	ctx context.Context,
	userID uint,
) (*model.MT5Account, error) {

	var account model.MT5Account

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&account).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":    "MT5AccountRepository",
			"op":      "GetByUser",
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch MT5 account")

		return nil, err
	}

	return &account, nil
}

// ListSyncEnabled fetches every account with sync turned on.
func (r *MT5AccountRepository) ListSyncEnabled(
	ctx context.Context,
) ([]model.MT5Account, error) {

	var accounts []model.MT5Account

	err := r.db.WithContext(ctx).
		Where("sync_enabled = ?", true).
		Order("id ASC").
		Find(&accounts).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "MT5AccountRepository",
			"op":   "ListSyncEnabled",
		}).WithError(err).Error("Failed to list sync-enabled accounts")

		return nil, err
	}

	return accounts, nil
}

// UpdateSyncState records the highest reconciled deal ticket after a
// successful sync pass.
func (r *MT5AccountRepository) UpdateSyncState(
	ctx context.Context,
	accountID uint,
	lastTicket int64,
	syncedAt time.Time,
) error {

	err := r.db.WithContext(ctx).
		Model(&model.MT5Account{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"last_ticket":    lastTicket,
			"last_synced_at": syncedAt,
		}).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "MT5AccountRepository",
			"op":          "UpdateSyncState",
			"account_id":  accountID,
			"last_ticket": lastTicket,
		}).WithError(err).Error("Failed to update sync state")

		return err
	}

	return nil
}
