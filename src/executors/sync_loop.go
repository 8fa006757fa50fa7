package executors

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"journalapi/src/analysis"
	"journalapi/src/connectors"
	"journalapi/src/mapper"
	"journalapi/src/model"
	"journalapi/src/repository"
	"journalapi/src/security"
)

// dealFetcher is the bridge surface the sync loop consumes.
type dealFetcher interface {
	FetchDeals(ctx context.Context, creds connectors.MT5Credentials, sinceTicket int64) ([]connectors.MT5Deal, error)
}

// accountStore is the persistence surface the sync loop consumes.
type accountStore interface {
	ListSyncEnabled(ctx context.Context) ([]model.MT5Account, error)
	UpdateSyncState(ctx context.Context, accountID uint, lastTicket int64, syncedAt time.Time) error
}

// tradeStore reconciles bridge deals into journal trades.
type tradeStore interface {
	UpsertByBrokerTicket(ctx context.Context, trade *model.Trade) (bool, error)
}

// StartSyncLoop polls the MT5 bridge for every sync-enabled account and
// reconciles new deals into the journal. It runs until the context is
// cancelled. A failing account is skipped for the tick, not fatal: one
// broken terminal must not stall everyone else's sync.
func StartSyncLoop(ctx context.Context) error {
	config := GetConfig()

	ticker := time.NewTicker(config.SyncPeriod)
	defer ticker.Stop()

	bridge := connectors.DefaultMT5BridgeClient()
	accountRep := repository.NewMT5AccountRepository()
	tradeRep := repository.NewTradeRepository()
	exceptionRep := repository.NewExceptionRepository()

	for {
		select {
		case <-ctx.Done():
			logger.Info("sync loop stopped")
			return nil

		case <-ticker.C:
			logger.Info("sync loop tick")
			SyncTick(ctx, bridge, accountRep, tradeRep, exceptionRep)
		}
	}
}

// SyncTick runs one reconciliation pass over all sync-enabled accounts.
func SyncTick(
	ctx context.Context,
	bridge dealFetcher,
	accounts accountStore,
	trades tradeStore,
	exceptions analysis.ExceptionWriter,
) {

	enabled, err := accounts.ListSyncEnabled(ctx)
	if err != nil {
		analysis.Capture(ctx, exceptions, "mt5sync", "executors", "SyncTick", "error", err, nil)
		return
	}

	for _, account := range enabled {
		if err := syncAccount(ctx, bridge, trades, accounts, account); err != nil {
			analysis.Capture(ctx, exceptions, "mt5sync", "executors", "syncAccount", "error", err, map[string]interface{}{
				"account_id": account.ID,
				"user_id":    account.UserID,
			})
			continue
		}
	}
}

func syncAccount(
	ctx context.Context,
	bridge dealFetcher,
	trades tradeStore,
	accounts accountStore,
	account model.MT5Account,
) error {

	password, err := security.DecryptString(account.PasswordHash)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"account_id": account.ID,
			"user_id":    account.UserID,
		}).WithError(err).Error("Failed to decrypt account password")
		return err
	}

	creds := connectors.MT5Credentials{
		Server:   account.Server,
		Login:    account.Login,
		Password: password,
	}

	lastTicket := account.LastTicket
	imported := 0

	for {
		deals, err := bridge.FetchDeals(ctx, creds, lastTicket)
		if err != nil {
			return err
		}
		if len(deals) == 0 {
			break
		}

		pageStart := lastTicket

		for _, deal := range deals {
			// advance the cursor even for skipped deals so a bad one is
			// not refetched forever
			if deal.Ticket > lastTicket {
				lastTicket = deal.Ticket
			}

			trade, err := mapper.MapMT5DealToTrade(deal, account.UserID)
			if err != nil {
				logger.WithFields(map[string]interface{}{
					"account_id": account.ID,
					"ticket":     deal.Ticket,
				}).WithError(err).Warn("Skipping unmappable deal")
				continue
			}

			inserted, err := trades.UpsertByBrokerTicket(ctx, trade)
			if err != nil {
				return err
			}
			if inserted {
				imported++
			}
		}

		// A page of only already-seen tickets means the bridge is not
		// honoring since_ticket. Stop instead of refetching it forever.
		if lastTicket == pageStart {
			logger.WithFields(map[string]interface{}{
				"account_id":  account.ID,
				"last_ticket": lastTicket,
			}).Warn("Bridge page did not advance the ticket cursor, stopping pass")
			break
		}
	}

	if lastTicket != account.LastTicket {
		if err := accounts.UpdateSyncState(ctx, account.ID, lastTicket, time.Now().UTC()); err != nil {
			return err
		}
	}

	logger.WithFields(map[string]interface{}{
		"account_id":  account.ID,
		"user_id":     account.UserID,
		"imported":    imported,
		"last_ticket": lastTicket,
	}).Info("Account sync pass complete")

	return nil
}
