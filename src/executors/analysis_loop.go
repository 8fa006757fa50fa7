package executors

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"

	"journalapi/src/analysis"
	"journalapi/src/insights"
	"journalapi/src/model"
	"journalapi/src/repository"
)

type patternRunner interface {
	RunPatternAnalysis(ctx context.Context, userID uint) ([]*model.TradePattern, error)
}

type syncAccountLister interface {
	ListSyncEnabled(ctx context.Context) ([]model.MT5Account, error)
}

// StartAnalysisLoop periodically runs pattern analysis for every
// sync-enabled user. Runs until the context is cancelled.
func StartAnalysisLoop(ctx context.Context) error {
	config := GetConfig()

	ticker := time.NewTicker(config.AnalysisPeriod)
	defer ticker.Stop()

	var summarizer insights.Summarizer
	if insights.GetConfig().OpenAIAPIKey != "" {
		summarizer = insights.NewOpenAIClient()
	}

	service := analysis.NewService(
		repository.NewTradeRepositoryReadOnly(),
		repository.NewPatternRepository(),
		repository.NewBehaviorRepository(),
		summarizer,
	)

	accountRep := repository.NewMT5AccountRepository()
	exceptionRep := repository.NewExceptionRepository()

	for {
		select {
		case <-ctx.Done():
			logger.Info("analysis loop stopped")
			return nil

		case <-ticker.C:
			logger.Info("analysis loop tick")
			AnalysisTick(ctx, service, accountRep, exceptionRep)
		}
	}
}

// AnalysisTick runs one analysis pass over all sync-enabled users. Users
// without enough closed trades are skipped, not errored.
func AnalysisTick(
	ctx context.Context,
	service patternRunner,
	accounts syncAccountLister,
	exceptions analysis.ExceptionWriter,
) {

	enabled, err := accounts.ListSyncEnabled(ctx)
	if err != nil {
		analysis.Capture(ctx, exceptions, "analyzer", "executors", "AnalysisTick", "error", err, nil)
		return
	}

	for _, account := range enabled {
		rows, err := service.RunPatternAnalysis(ctx, account.UserID)
		if err != nil {
			var insufficient *analysis.InsufficientDataError
			if errors.As(err, &insufficient) {
				logger.WithFields(map[string]interface{}{
					"user_id":  account.UserID,
					"got":      insufficient.Got,
					"required": insufficient.Required,
				}).Debug("Skipping user with insufficient data")
				continue
			}

			analysis.Capture(ctx, exceptions, "analyzer", "executors", "RunPatternAnalysis", "error", err, map[string]interface{}{
				"user_id": account.UserID,
			})
			continue
		}

		logger.WithFields(map[string]interface{}{
			"user_id":  account.UserID,
			"patterns": len(rows),
		}).Info("Scheduled analysis run complete")
	}
}
