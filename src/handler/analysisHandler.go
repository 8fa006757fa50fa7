package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"journalapi/src/analysis"
	"journalapi/src/auth"
	"journalapi/src/behavior"
	"journalapi/src/insights"
	"journalapi/src/model"
	"journalapi/src/repository"

	logger "github.com/sirupsen/logrus"
)

type patternAnalyzer interface {
	RunPatternAnalysis(ctx context.Context, userID uint) ([]*model.TradePattern, error)
}

type behaviorScanner interface {
	RunBehaviorScan(ctx context.Context, userID uint) ([]behavior.Finding, error)
}

type patternLister interface {
	FindByUser(ctx context.Context, userID uint, limit int) ([]model.TradePattern, error)
}

type behaviorLister interface {
	FindLatestByUser(ctx context.Context, userID uint, limit int) ([]model.TradingBehavior, error)
}

// RunAnalysisHandler returns a handler that triggers a pattern analysis run
// for the authenticated user and returns the stored patterns.
func RunAnalysisHandler(svc patternAnalyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		rows, err := svc.RunPatternAnalysis(r.Context(), user.ID)
		if err != nil {
			var insufficient *analysis.InsufficientDataError
			if errors.As(err, &insufficient) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnprocessableEntity)
				if encodeErr := json.NewEncoder(w).Encode(map[string]interface{}{
					"error":    "insufficient data",
					"got":      insufficient.Got,
					"required": insufficient.Required,
				}); encodeErr != nil {
					logger.WithError(encodeErr).Error("failed to encode insufficient data response")
				}
				return
			}

			logger.WithError(err).Error("pattern analysis run failed")
			http.Error(w, "Analysis temporarily unavailable, try again later", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rows); err != nil {
			logger.WithError(err).Error("failed to encode analysis response")
		}
	}
}

// BehaviorScanHandler returns a handler that scans the authenticated user's
// last 24 hours of trades for behavioral anomalies.
func BehaviorScanHandler(svc behaviorScanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		findings, err := svc.RunBehaviorScan(r.Context(), user.ID)
		if err != nil {
			logger.WithError(err).Error("behavior scan failed")
			http.Error(w, "Scan temporarily unavailable, try again later", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(findings); err != nil {
			logger.WithError(err).Error("failed to encode behavior scan response")
		}
	}
}

// ListPatternsHandler returns a handler that lists the authenticated user's
// stored analysis patterns, newest first.
func ListPatternsHandler(repo patternLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		limit := 0
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		patterns, err := repo.FindByUser(r.Context(), user.ID, limit)
		if err != nil {
			logger.WithError(err).Error("failed to list patterns")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(patterns); err != nil {
			logger.WithError(err).Error("failed to encode pattern list")
		}
	}
}

// ListBehaviorsHandler returns a handler that lists the authenticated
// user's stored behavioral findings, newest first.
func ListBehaviorsHandler(repo behaviorLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		limit := 0
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		behaviors, err := repo.FindLatestByUser(r.Context(), user.ID, limit)
		if err != nil {
			logger.WithError(err).Error("failed to list behaviors")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(behaviors); err != nil {
			logger.WithError(err).Error("failed to encode behavior list")
		}
	}
}

// defaultAnalysisService builds the production analysis service: read-only
// trade access, main-DB writers, and the OpenAI summarizer when a key is
// configured (offline summaries otherwise).
func defaultAnalysisService() *analysis.Service {
	var summarizer insights.Summarizer
	if insights.GetConfig().OpenAIAPIKey != "" {
		summarizer = insights.NewOpenAIClient()
	}

	return analysis.NewService(
		repository.NewTradeRepositoryReadOnly(),
		repository.NewPatternRepository(),
		repository.NewBehaviorRepository(),
		summarizer,
	)
}

// DefaultRunAnalysisHandler wires the handler to the production analysis service.
func DefaultRunAnalysisHandler() http.HandlerFunc {
	return RunAnalysisHandler(defaultAnalysisService())
}

// DefaultBehaviorScanHandler wires the handler to the production analysis service.
func DefaultBehaviorScanHandler() http.HandlerFunc {
	return BehaviorScanHandler(defaultAnalysisService())
}

// DefaultListPatternsHandler wires the handler to the production repository implementation.
func DefaultListPatternsHandler() http.HandlerFunc {
	return ListPatternsHandler(repository.NewPatternRepository())
}

// DefaultListBehaviorsHandler wires the handler to the production repository implementation.
func DefaultListBehaviorsHandler() http.HandlerFunc {
	return ListBehaviorsHandler(repository.NewBehaviorRepository())
}
