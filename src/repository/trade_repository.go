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

// TradeSearchOptions are the filters for listing a user's trades.
type TradeSearchOptions struct {
	UserID        uint
	Pair          *string
	Outcome       *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}

// TradeRepository handles read/write operations for journal trades.
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new repository instance using the main
// read/write database.
func NewTradeRepository() *TradeRepository {
	logger.WithField("component", "TradeRepository").
		Info("Creating new TradeRepository with MainDB")

	return &TradeRepository{
		db: database.MainDB,
	}
}

// NewTradeRepositoryReadOnly creates a repository bound to the read-only
// connection. The analysis path uses this one; it must never write.
func NewTradeRepositoryReadOnly() *TradeRepository {
	logger.WithField("component", "TradeRepository").
		Info("Creating new TradeRepository with ReadOnlyDB")

	return &TradeRepository{
		db: database.ReadOnlyDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *TradeRepository) WithDB(db *gorm.DB) *TradeRepository {
	logger.WithField("component", "TradeRepository").
		Debug("Creating TradeRepository with custom DB instance")

	return &TradeRepository{db: db}
}

// Create inserts a new trade. The given trade is updated with the
// generated ID and timestamps.
func (r *TradeRepository) Create(
	ctx context.Context,
	trade *model.Trade,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":   "TradeRepository",
		"op":     "Create",
		"pair":   trade.Pair,
		"dir":    trade.Direction,
		"volume": trade.Volume,
	}).Debug("Creating new trade")

	err := r.db.WithContext(ctx).Create(trade).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create trade")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "TradeRepository",
		"op":       "Create",
		"trade_id": trade.ID,
	}).Info("Trade created successfully")

	return nil
}

// Save persists every field of an existing trade (sync reconciliation).
func (r *TradeRepository) Save(
	ctx context.Context,
	trade *model.Trade,
) error {
	return r.db.WithContext(ctx).Save(trade).Error
}

// Search lists trades for a user, newest first, with optional filters.
func (r *TradeRepository) Search(
	ctx context.Context,
	options TradeSearchOptions,
) ([]model.Trade, error) {

	logger.WithFields(map[string]interface{}{
		"repo":    "TradeRepository",
		"op":      "Search",
		"user_id": options.UserID,
	}).Debug("Searching trades")

	query := r.db.WithContext(ctx).
		Where("user_id = ?", options.UserID)

	if options.Pair != nil {
		query = query.Where("pair = ?", *options.Pair)
	}
	if options.Outcome != nil {
		query = query.Where("outcome = ?", *options.Outcome)
	}
	if options.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *options.CreatedAfter)
	}
	if options.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *options.CreatedBefore)
	}

	query = query.Order("created_at DESC, id DESC")

	if options.Limit > 0 {
		query = query.Limit(options.Limit)
	}
	if options.Offset > 0 {
		query = query.Offset(options.Offset)
	}

	var trades []model.Trade
	if err := query.Find(&trades).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "TradeRepository",
			"op":      "Search",
			"user_id": options.UserID,
		}).WithError(err).Error("Failed to search trades")

		return nil, err
	}

	return trades, nil
}

// FindWindow fetches a user's trades created within [from, to], ordered
// newest first. This is the shape every detector and aggregator consumes.
func (r *TradeRepository) FindWindow(
	ctx context.Context,
	userID uint,
	from, to time.Time,
) ([]model.Trade, error) {

	logger.WithFields(map[string]interface{}{
		"repo":    "TradeRepository",
		"op":      "FindWindow",
		"user_id": userID,
		"from":    from,
		"to":      to,
	}).Debug("Fetching trade window")

	var trades []model.Trade

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, from, to).
		Order("created_at DESC, id DESC").
		Find(&trades).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "TradeRepository",
			"op":      "FindWindow",
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch trade window")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "TradeRepository",
		"op":          "FindWindow",
		"user_id":     userID,
		"rows_return": len(trades),
	}).Debug("Trade window fetched")

	return trades, nil
}

// CountLossesSince counts a user's losing trades created after since.
func (r *TradeRepository) CountLossesSince(
	ctx context.Context,
	userID uint,
	since time.Time,
) (int, error) {

	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Trade{}).
		Where("user_id = ? AND outcome = ? AND created_at >= ?", userID, model.TradeOutcomeLoss, since).
		Count(&count).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "TradeRepository",
			"op":      "CountLossesSince",
			"user_id": userID,
		}).WithError(err).Error("Failed to count recent losses")

		return 0, err
	}

	return int(count), nil
}

// FindByBrokerTicket fetches a user's trade by its MT5 deal ticket.
// Returns (nil, nil) if not found.
func (r *TradeRepository) FindByBrokerTicket(
	ctx context.Context,
	userID uint,
	ticket int64,
) (*model.Trade, error) {

	var trade model.Trade

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND broker_ticket = ?", userID, ticket).
		First(&trade).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // not found is not an error
		}

		logger.WithFields(map[string]interface{}{
			"repo":    "TradeRepository",
			"op":      "FindByBrokerTicket",
			"user_id": userID,
			"ticket":  ticket,
		}).WithError(err).Error("Failed to fetch trade by broker ticket")

		return nil, err
	}

	return &trade, nil
}

// UpsertByBrokerTicket creates the trade when no row carries its MT5 deal
// ticket yet, otherwise refreshes the existing row. Returns true when a new
// row was inserted.
func (r *TradeRepository) UpsertByBrokerTicket(
	ctx context.Context,
	trade *model.Trade,
) (bool, error) {

	if trade.BrokerTicket == nil {
		return false, errors.New("trade has no broker ticket")
	}

	existing, err := r.FindByBrokerTicket(ctx, trade.UserID, *trade.BrokerTicket)
	if err != nil {
		return false, err
	}

	if existing == nil {
		if err := r.Create(ctx, trade); err != nil {
			return false, err
		}
		return true, nil
	}

	trade.ID = existing.ID
	trade.CreatedAt = existing.CreatedAt

	if err := r.Save(ctx, trade); err != nil {
		return false, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "TradeRepository",
		"op":       "UpsertByBrokerTicket",
		"trade_id": trade.ID,
		"ticket":   *trade.BrokerTicket,
	}).Debug("Existing trade refreshed from broker deal")

	return false, nil
}

// DeleteLastByUser removes the user's most recent trade and returns it.
// Backs the "delete last trade" voice command. Returns (nil, nil) when the
// user has no trades.
func (r *TradeRepository) DeleteLastByUser(
	ctx context.Context,
	userID uint,
) (*model.Trade, error) {

	var trade model.Trade

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&trade).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).Delete(&model.Trade{}, trade.ID).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "TradeRepository",
			"op":       "DeleteLastByUser",
			"user_id":  userID,
			"trade_id": trade.ID,
		}).WithError(err).Error("Failed to delete last trade")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "TradeRepository",
		"op":       "DeleteLastByUser",
		"user_id":  userID,
		"trade_id": trade.ID,
	}).Info("Last trade deleted")

	return &trade, nil
}
