package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"journalapi/src/insights"
	"journalapi/src/model"
)

type stubTradeReader struct {
	trades []model.Trade
	err    error

	gotUserID uint
	gotFrom   time.Time
	gotTo     time.Time
}

func (s *stubTradeReader) FindWindow(_ context.Context, userID uint, from, to time.Time) ([]model.Trade, error) {
	s.gotUserID = userID
	s.gotFrom = from
	s.gotTo = to
	return s.trades, s.err
}

type stubPatternWriter struct {
	created []*model.TradePattern
	err     error
}

func (s *stubPatternWriter) CreateBatch(_ context.Context, patterns []*model.TradePattern) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, patterns...)
	return nil
}

type stubBehaviorWriter struct {
	created []*model.TradingBehavior
	err     error
}

func (s *stubBehaviorWriter) Create(_ context.Context, finding *model.TradingBehavior) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, finding)
	return nil
}

type stubSummarizer struct {
	summary *insights.Summary
	err     error
	calls   int
}

func (s *stubSummarizer) Summarize(_ context.Context, _ insights.Request) (*insights.Summary, error) {
	s.calls++
	return s.summary, s.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func closedTrade(id uint, pair string, outcome string, createdAt time.Time) model.Trade {
	exit := 1.1
	return model.Trade{
		ID:         id,
		UserID:     1,
		Pair:       pair,
		Direction:  model.TradeDirectionBuy,
		EntryPrice: 1.0,
		ExitPrice:  &exit,
		Volume:     0.1,
		Outcome:    outcome,
		CreatedAt:  createdAt,
	}
}

func TestRunPatternAnalysisInsufficientData(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	reader := &stubTradeReader{trades: []model.Trade{
		closedTrade(1, "EURUSD", model.TradeOutcomeWin, now.Add(-time.Hour)),
		closedTrade(2, "EURUSD", model.TradeOutcomeLoss, now.Add(-2*time.Hour)),
		{ID: 3, UserID: 1, Pair: "EURUSD", Outcome: model.TradeOutcomeOpen, CreatedAt: now.Add(-3 * time.Hour)},
	}}
	writer := &stubPatternWriter{}

	svc := NewService(reader, writer, &stubBehaviorWriter{}, nil).WithClock(fixedClock(now))

	rows, err := svc.RunPatternAnalysis(context.Background(), 1)
	if rows != nil {
		t.Fatalf("expected no rows, got %d", len(rows))
	}

	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	// open trades must not count toward the minimum
	if insufficient.Got != 2 || insufficient.Required != 5 {
		t.Fatalf("unexpected error detail: %+v", insufficient)
	}
	if len(writer.created) != 0 {
		t.Fatalf("nothing should be persisted on insufficient data, got %d rows", len(writer.created))
	}
}

func TestRunPatternAnalysisPersistsSummarizerInsights(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	trades := make([]model.Trade, 0, 6)
	for i := uint(1); i <= 6; i++ {
		outcome := model.TradeOutcomeWin
		if i%3 == 0 {
			outcome = model.TradeOutcomeLoss
		}
		trades = append(trades, closedTrade(i, "EURUSD", outcome, now.Add(-time.Duration(i)*time.Hour)))
	}

	reader := &stubTradeReader{trades: trades}
	writer := &stubPatternWriter{}
	summarizer := &stubSummarizer{summary: &insights.Summary{
		Insights: []insights.Insight{
			{
				PatternType:    model.PatternPairBased,
				Description:    "EURUSD is your strongest pair",
				WinRate:        66.7,
				SampleSize:     6,
				Confidence:     75,
				Recommendation: "Keep focusing on EURUSD.",
			},
			{
				PatternType:    model.PatternSessionBased,
				Description:    "You trade best in the London session",
				WinRate:        70.0,
				SampleSize:     5,
				Confidence:     60,
				Recommendation: "Concentrate entries between 07:00 and 16:00 UTC.",
			},
		},
		Narrative: "Solid month on EURUSD.",
	}}

	svc := NewService(reader, writer, &stubBehaviorWriter{}, summarizer).WithClock(fixedClock(now))

	rows, err := svc.RunPatternAnalysis(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reader.gotUserID != 1 {
		t.Fatalf("window fetched for wrong user: %d", reader.gotUserID)
	}
	if got := reader.gotTo.Sub(reader.gotFrom); got != time.Duration(PatternWindowDays)*24*time.Hour {
		t.Fatalf("unexpected analysis window span: %v", got)
	}

	if len(rows) != 2 || len(writer.created) != 2 {
		t.Fatalf("expected 2 persisted patterns, got %d returned / %d stored", len(rows), len(writer.created))
	}

	if rows[0].AnalysisRunID == "" || rows[0].AnalysisRunID != rows[1].AnalysisRunID {
		t.Fatalf("all rows of one run must share a run ID: %q vs %q", rows[0].AnalysisRunID, rows[1].AnalysisRunID)
	}

	assert.Equal(t, model.PatternPairBased, rows[0].PatternType)
	assert.Equal(t, 66.7, rows[0].WinRate)
	assert.Equal(t, "Keep focusing on EURUSD.", rows[0].Recommendation)
	assert.Equal(t, uint(1), rows[0].UserID)
}

func TestRunPatternAnalysisFallsBackOffline(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	trades := make([]model.Trade, 0, 6)
	for i := uint(1); i <= 6; i++ {
		trades = append(trades, closedTrade(i, "GBPJPY", model.TradeOutcomeWin, now.Add(-time.Duration(i)*time.Hour)))
	}

	reader := &stubTradeReader{trades: trades}
	writer := &stubPatternWriter{}
	summarizer := &stubSummarizer{err: insights.ErrUnavailable}

	svc := NewService(reader, writer, &stubBehaviorWriter{}, summarizer).WithClock(fixedClock(now))

	rows, err := svc.RunPatternAnalysis(context.Background(), 1)
	if err != nil {
		t.Fatalf("soft summarizer failure must not fail the run: %v", err)
	}

	if summarizer.calls != 1 {
		t.Fatalf("summarizer should have been tried once, got %d calls", summarizer.calls)
	}
	if len(rows) == 0 {
		t.Fatal("offline fallback should still produce patterns")
	}
	for _, row := range rows {
		if row.Recommendation == "" {
			t.Fatalf("offline pattern missing recommendation: %+v", row)
		}
	}
}

func TestRunPatternAnalysisFetchError(t *testing.T) {
	reader := &stubTradeReader{err: assert.AnError}
	svc := NewService(reader, &stubPatternWriter{}, &stubBehaviorWriter{}, nil)

	_, err := svc.RunPatternAnalysis(context.Background(), 1)
	if !errors.Is(err, assert.AnError) {
		t.Fatalf("fetch error must propagate, got %v", err)
	}
}

func TestRunBehaviorScanPersistsFindings(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Newest first: a loss followed 5 minutes later by a 2x-size trade.
	followUp := closedTrade(2, "EURUSD", model.TradeOutcomeOpen, now.Add(-5*time.Minute))
	followUp.Volume = 0.2
	loss := closedTrade(1, "EURUSD", model.TradeOutcomeLoss, now.Add(-10*time.Minute))
	loss.Volume = 0.1

	reader := &stubTradeReader{trades: []model.Trade{followUp, loss}}
	writer := &stubBehaviorWriter{}

	svc := NewService(reader, &stubPatternWriter{}, writer, nil).WithClock(fixedClock(now))

	findings, err := svc.RunBehaviorScan(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(findings) != 1 || findings[0].BehaviorType != model.BehaviorRevengeTrading {
		t.Fatalf("expected a single revenge finding, got %+v", findings)
	}

	if len(writer.created) != 1 {
		t.Fatalf("expected 1 persisted finding, got %d", len(writer.created))
	}

	ids, err := writer.created[0].GetTradeIDs()
	if err != nil {
		t.Fatalf("unexpected error decoding trade IDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("persisted trade IDs wrong: %v", ids)
	}
	if writer.created[0].Severity != model.SeverityHigh {
		t.Fatalf("revenge finding must be high severity, got %q", writer.created[0].Severity)
	}
}

func TestRunBehaviorScanQuietWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	reader := &stubTradeReader{trades: []model.Trade{
		closedTrade(1, "EURUSD", model.TradeOutcomeWin, now.Add(-3*time.Hour)),
	}}
	writer := &stubBehaviorWriter{}

	svc := NewService(reader, &stubPatternWriter{}, writer, nil).WithClock(fixedClock(now))

	findings, err := svc.RunBehaviorScan(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("expected no findings, got %+v", findings)
	}
	if len(writer.created) != 0 {
		t.Fatalf("nothing should be persisted for a quiet window, got %d", len(writer.created))
	}
}
