package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"journalapi/src/behavior"
	"journalapi/src/insights"
	"journalapi/src/model"
	"journalapi/src/patterns"
)

const (
	// PatternWindowDays is the lookback for batch pattern analysis.
	PatternWindowDays = 90

	// BehaviorWindow is the lookback for the behavioral scan.
	BehaviorWindow = 24 * time.Hour
)

// InsufficientDataError is returned when a user has too few closed trades
// for pattern analysis to say anything meaningful.
type InsufficientDataError struct {
	Got      int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("not enough closed trades for analysis: have %d, need %d", e.Got, e.Required)
}

// TradeReader is the read-only trade access the analysis pipeline needs.
type TradeReader interface {
	FindWindow(ctx context.Context, userID uint, from, to time.Time) ([]model.Trade, error)
}

// PatternWriter persists the patterns of one analysis run.
type PatternWriter interface {
	CreateBatch(ctx context.Context, patterns []*model.TradePattern) error
}

// BehaviorWriter appends behavioral findings.
type BehaviorWriter interface {
	Create(ctx context.Context, finding *model.TradingBehavior) error
}

// Service orchestrates the analysis pipeline: fetch the window, run the
// pure detectors/aggregators, summarize, persist the audit rows.
type Service struct {
	trades     TradeReader
	patterns   PatternWriter
	behaviors  BehaviorWriter
	summarizer insights.Summarizer
	now        func() time.Time
}

// NewService wires the analysis service. The summarizer may be nil, in
// which case every run uses the templated offline summary.
func NewService(
	trades TradeReader,
	patternWriter PatternWriter,
	behaviorWriter BehaviorWriter,
	summarizer insights.Summarizer,
) *Service {

	logger.WithField("component", "AnalysisService").
		Info("Creating analysis service")

	return &Service{
		trades:     trades,
		patterns:   patternWriter,
		behaviors:  behaviorWriter,
		summarizer: summarizer,
		now:        time.Now,
	}
}

// WithClock overrides the service clock. Tests use this to pin windows.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RunPatternAnalysis analyzes the user's closed trades over the last 90
// days and persists one TradePattern row per insight, all tagged with the
// same run ID. The stored rows are returned newest batch only.
func (s *Service) RunPatternAnalysis(
	ctx context.Context,
	userID uint,
) ([]*model.TradePattern, error) {

	now := s.now().UTC()
	from := now.AddDate(0, 0, -PatternWindowDays)

	logger.WithFields(map[string]interface{}{
		"service": "AnalysisService",
		"op":      "RunPatternAnalysis",
		"user_id": userID,
		"from":    from.Format("2006-01-02"),
	}).Info("Starting pattern analysis run")

	window, err := s.trades.FindWindow(ctx, userID, from, now)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"service": "AnalysisService",
			"op":      "RunPatternAnalysis",
			"user_id": userID,
		}).WithError(err).Error("Failed to load trade window")

		return nil, err
	}

	closed := closedTrades(window)
	if len(closed) < patterns.MinimumSampleSize {
		return nil, &InsufficientDataError{
			Got:      len(closed),
			Required: patterns.MinimumSampleSize,
		}
	}

	req := insights.Request{
		PairStats:    patterns.AggregateByPair(closed),
		WeekdayStats: patterns.AggregateByWeekday(closed),
		SessionStats: patterns.AggregateBySession(closed),
		Trades:       closed,
	}

	summary := s.summarize(ctx, userID, req)

	runID := uuid.New().String()
	rows := make([]*model.TradePattern, 0, len(summary.Insights))
	for _, insight := range summary.Insights {
		rows = append(rows, &model.TradePattern{
			UserID:         userID,
			AnalysisRunID:  runID,
			PatternType:    insight.PatternType,
			Description:    insight.Description,
			WinRate:        insight.WinRate,
			SampleSize:     insight.SampleSize,
			Confidence:     insight.Confidence,
			Recommendation: insight.Recommendation,
		})
	}

	if err := s.patterns.CreateBatch(ctx, rows); err != nil {
		logger.WithFields(map[string]interface{}{
			"service": "AnalysisService",
			"op":      "RunPatternAnalysis",
			"user_id": userID,
			"run_id":  runID,
		}).WithError(err).Error("Failed to persist analysis run")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"service":  "AnalysisService",
		"op":       "RunPatternAnalysis",
		"user_id":  userID,
		"run_id":   runID,
		"patterns": len(rows),
	}).Info("Pattern analysis run complete")

	return rows, nil
}

// RunBehaviorScan runs the behavioral detectors over the user's last 24
// hours of trades and appends one TradingBehavior row per finding.
func (s *Service) RunBehaviorScan(
	ctx context.Context,
	userID uint,
) ([]behavior.Finding, error) {

	now := s.now().UTC()
	from := now.Add(-BehaviorWindow)

	window, err := s.trades.FindWindow(ctx, userID, from, now)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"service": "AnalysisService",
			"op":      "RunBehaviorScan",
			"user_id": userID,
		}).WithError(err).Error("Failed to load trade window")

		return nil, err
	}

	findings := behavior.Run(window, now)

	for _, finding := range findings {
		row := &model.TradingBehavior{
			UserID:         userID,
			BehaviorType:   finding.BehaviorType,
			Severity:       finding.Severity,
			Recommendation: finding.Recommendation,
		}
		if err := row.SetTradeIDs(finding.TradeIDs); err != nil {
			return nil, err
		}
		if err := s.behaviors.Create(ctx, row); err != nil {
			logger.WithFields(map[string]interface{}{
				"service": "AnalysisService",
				"op":      "RunBehaviorScan",
				"user_id": userID,
				"type":    finding.BehaviorType,
			}).WithError(err).Error("Failed to persist behavior finding")

			return nil, err
		}
	}

	logger.WithFields(map[string]interface{}{
		"service":  "AnalysisService",
		"op":       "RunBehaviorScan",
		"user_id":  userID,
		"findings": len(findings),
	}).Info("Behavior scan complete")

	return findings, nil
}

// summarize asks the LLM summarizer and falls back to the templated
// offline summary on soft failures or when no summarizer is configured.
func (s *Service) summarize(
	ctx context.Context,
	userID uint,
	req insights.Request,
) *insights.Summary {

	if s.summarizer == nil {
		return insights.OfflineSummary(req)
	}

	summary, err := s.summarizer.Summarize(ctx, req)
	if err != nil {
		if errors.Is(err, insights.ErrUnavailable) {
			logger.WithFields(map[string]interface{}{
				"service": "AnalysisService",
				"op":      "summarize",
				"user_id": userID,
			}).Warn("Summarizer unavailable, using offline summary")
		} else {
			logger.WithFields(map[string]interface{}{
				"service": "AnalysisService",
				"op":      "summarize",
				"user_id": userID,
			}).WithError(err).Error("Summarizer failed, using offline summary")
		}

		return insights.OfflineSummary(req)
	}

	return summary
}

func closedTrades(trades []model.Trade) []model.Trade {
	closed := make([]model.Trade, 0, len(trades))
	for _, trade := range trades {
		if trade.IsClosed() {
			closed = append(closed, trade)
		}
	}
	return closed
}
