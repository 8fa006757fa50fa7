package insights

import (
	"context"
	"errors"

	"journalapi/src/model"
	"journalapi/src/patterns"
)

// ErrUnavailable marks soft summarizer failures: rate limiting, quota
// exhaustion, timeouts. Callers fall back to the templated offline summary
// instead of surfacing these to the user.
var ErrUnavailable = errors.New("summarizer temporarily unavailable")

// Request carries everything the summarizer sees: the three aggregate
// tables plus the raw 90-day trade sample.
type Request struct {
	PairStats    []patterns.PairStats    `json:"pair_stats"`
	WeekdayStats []patterns.WeekdayStats `json:"weekday_stats"`
	SessionStats []patterns.SessionStats `json:"session_stats"`
	Trades       []model.Trade           `json:"trades"`
}

// Insight is one pattern the summarizer surfaced. Its numeric claims are
// stored verbatim; the service validates JSON shape only.
type Insight struct {
	PatternType    string  `json:"pattern_type"` // pair_based | time_based | session_based
	Description    string  `json:"description"`
	WinRate        float64 `json:"win_rate"`
	SampleSize     int     `json:"sample_size"`
	Confidence     float64 `json:"confidence"`
	Recommendation string  `json:"recommendation"`
}

// Summary is the summarizer's structured output.
type Summary struct {
	Insights  []Insight `json:"insights"`
	Narrative string    `json:"narrative"`
}

// Summarizer turns aggregated journal statistics into insights. Implemented
// by the OpenAI-backed client and mocked in tests so the analysis pipeline
// stays testable without network access.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (*Summary, error)
}
