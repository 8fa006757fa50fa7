package mapper

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"journalapi/src/connectors"
	"journalapi/src/model"
	"journalapi/src/patterns"
)

// MapMT5DealToTrade converts a bridge deal into a journal trade for the
// given user. Numeric fields arrive as strings and are parsed through
// decimal so broker prices survive untouched.
func MapMT5DealToTrade(deal connectors.MT5Deal, userID uint) (*model.Trade, error) {
	if deal.Ticket <= 0 {
		return nil, fmt.Errorf("deal has no ticket: %+v", deal)
	}

	if deal.Type != model.TradeDirectionBuy && deal.Type != model.TradeDirectionSell {
		return nil, fmt.Errorf("deal %d has unknown type %q", deal.Ticket, deal.Type)
	}

	parseDecimalSafe := func(field, v string) decimal.Decimal {
		if v == "" {
			logger.WithField("field", field).Debug("Empty numeric field received, defaulting to 0")
			return decimal.Zero
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"field": field,
				"value": v,
			}).WithError(err).Error("Failed to parse decimal from bridge deal field; defaulting to 0")
			return decimal.Zero
		}
		return d
	}

	openedAt, err := time.Parse(time.RFC3339, deal.OpenedAt)
	if err != nil {
		return nil, fmt.Errorf("deal %d has invalid opened_at %q: %w", deal.Ticket, deal.OpenedAt, err)
	}
	openedAt = openedAt.UTC()

	profit := parseDecimalSafe("profit", deal.Profit)

	outcome := model.TradeOutcomeOpen
	if deal.ClosedAt != "" {
		switch profit.Sign() {
		case 1:
			outcome = model.TradeOutcomeWin
		case -1:
			outcome = model.TradeOutcomeLoss
		default:
			outcome = model.TradeOutcomeBreakeven
		}
	}

	ticket := deal.Ticket
	profitLoss, _ := profit.Float64()
	entryPrice, _ := parseDecimalSafe("entry_price", deal.EntryPrice).Float64()
	volume, _ := parseDecimalSafe("volume", deal.Volume).Float64()

	trade := &model.Trade{
		UserID:       userID,
		Pair:         deal.Symbol,
		Direction:    deal.Type,
		EntryPrice:   entryPrice,
		Volume:       volume,
		ProfitLoss:   profitLoss,
		Outcome:      outcome,
		Session:      patterns.SessionForHour(openedAt.Hour()),
		BrokerTicket: &ticket,
		Source:       model.TradeSourceMT5,
		CreatedAt:    openedAt,
	}

	if deal.ExitPrice != "" {
		exit, _ := parseDecimalSafe("exit_price", deal.ExitPrice).Float64()
		trade.ExitPrice = &exit
	}
	if deal.StopLoss != "" {
		sl, _ := parseDecimalSafe("stop_loss", deal.StopLoss).Float64()
		trade.StopLoss = &sl
	}
	if deal.TakeProfit != "" {
		tp, _ := parseDecimalSafe("take_profit", deal.TakeProfit).Float64()
		trade.TakeProfit = &tp
	}

	logger.WithFields(map[string]interface{}{
		"mapper":  "MapMT5DealToTrade",
		"user_id": userID,
		"ticket":  deal.Ticket,
		"symbol":  deal.Symbol,
		"outcome": outcome,
	}).Debug("Bridge deal mapped to trade")

	return trade, nil
}
