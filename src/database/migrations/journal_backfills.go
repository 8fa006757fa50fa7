package migrations

import (
	"fmt"

	"gorm.io/gorm"
)

// backfillTradeOutcomes fixes rows imported before the outcome column
// existed: closed trades keep whatever profit_loss says, open trades stay
// open.
func backfillTradeOutcomes(db *gorm.DB) error {
	statements := []string{
		`UPDATE trades SET outcome = 'win' WHERE (outcome IS NULL OR outcome = '') AND exit_price IS NOT NULL AND profit_loss > 0`,
		`UPDATE trades SET outcome = 'loss' WHERE (outcome IS NULL OR outcome = '') AND exit_price IS NOT NULL AND profit_loss < 0`,
		`UPDATE trades SET outcome = 'breakeven' WHERE (outcome IS NULL OR outcome = '') AND exit_price IS NOT NULL AND profit_loss = 0`,
		`UPDATE trades SET outcome = 'open' WHERE outcome IS NULL OR outcome = ''`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("backfill trade outcomes: %w", err)
		}
	}
	return nil
}

// normalizeCheckinDates truncates legacy check-in timestamps to midnight so
// the (user_id, checkin_date) unique index holds one row per calendar day.
func normalizeCheckinDates(db *gorm.DB) error {
	if err := db.Exec(`UPDATE daily_checkins SET checkin_date = date_trunc('day', checkin_date)`).Error; err != nil {
		return fmt.Errorf("normalize checkin dates: %w", err)
	}
	return nil
}

// defaultTradeSourceManual stamps rows created before the source column was
// introduced. Synced trades always carry a broker ticket, everything else
// was hand-entered.
func defaultTradeSourceManual(db *gorm.DB) error {
	statements := []string{
		`UPDATE trades SET source = 'mt5' WHERE (source IS NULL OR source = '') AND broker_ticket IS NOT NULL`,
		`UPDATE trades SET source = 'manual' WHERE source IS NULL OR source = ''`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("default trade source: %w", err)
		}
	}
	return nil
}
