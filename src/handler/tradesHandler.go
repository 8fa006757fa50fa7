package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"journalapi/src/auth"
	"journalapi/src/model"
	"journalapi/src/repository"

	logger "github.com/sirupsen/logrus"
)

type tradeSearcher interface {
	Search(ctx context.Context, options repository.TradeSearchOptions) ([]model.Trade, error)
}

type tradeCreator interface {
	Create(ctx context.Context, trade *model.Trade) error
}

type tradeDeleter interface {
	DeleteLastByUser(ctx context.Context, userID uint) (*model.Trade, error)
}

// SearchTradesHandler returns a handler that lists trades for the authenticated user.
// Supports pagination and filters (pair, outcome, createdFrom, createdTo).
func SearchTradesHandler(repo tradeSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var pair *string
		if pairParam := r.URL.Query().Get("pair"); pairParam != "" {
			pair = &pairParam
		}

		var outcome *string
		if outcomeParam := r.URL.Query().Get("outcome"); outcomeParam != "" {
			switch outcomeParam {
			case model.TradeOutcomeOpen, model.TradeOutcomeWin, model.TradeOutcomeLoss, model.TradeOutcomeBreakeven:
				outcome = &outcomeParam
			default:
				http.Error(w, "invalid outcome", http.StatusBadRequest)
				return
			}
		}

		var createdFrom, createdTo *time.Time
		if createdFromParam := r.URL.Query().Get("createdFrom"); createdFromParam != "" {
			parsed, err := time.Parse(time.RFC3339, createdFromParam)
			if err != nil {
				http.Error(w, "invalid createdFrom", http.StatusBadRequest)
				return
			}
			createdFrom = &parsed
		}

		if createdToParam := r.URL.Query().Get("createdTo"); createdToParam != "" {
			parsed, err := time.Parse(time.RFC3339, createdToParam)
			if err != nil {
				http.Error(w, "invalid createdTo", http.StatusBadRequest)
				return
			}
			createdTo = &parsed
		}

		page := 1
		if pageParam := r.URL.Query().Get("page"); pageParam != "" {
			parsedPage, err := strconv.Atoi(pageParam)
			if err != nil || parsedPage <= 0 {
				http.Error(w, "invalid page", http.StatusBadRequest)
				return
			}
			page = parsedPage
		}

		pageSize := 20
		if sizeParam := r.URL.Query().Get("pageSize"); sizeParam != "" {
			parsedSize, err := strconv.Atoi(sizeParam)
			if err != nil || parsedSize <= 0 {
				http.Error(w, "invalid pageSize", http.StatusBadRequest)
				return
			}
			pageSize = parsedSize
		}

		offset := (page - 1) * pageSize

		trades, err := repo.Search(r.Context(), repository.TradeSearchOptions{
			UserID:        user.ID,
			Pair:          pair,
			Outcome:       outcome,
			CreatedAfter:  createdFrom,
			CreatedBefore: createdTo,
			Limit:         pageSize,
			Offset:        offset,
		})
		if err != nil {
			logger.WithError(err).Error("failed to search trades")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(trades); err != nil {
			logger.WithError(err).Error("failed to encode trade search response")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
}

// createTradePayload is the inbound shape for manual journal entries.
type createTradePayload struct {
	Pair          string   `json:"pair"`
	Direction     string   `json:"direction"`
	EntryPrice    float64  `json:"entry_price"`
	ExitPrice     *float64 `json:"exit_price,omitempty"`
	StopLoss      *float64 `json:"stop_loss,omitempty"`
	TakeProfit    *float64 `json:"take_profit,omitempty"`
	Volume        float64  `json:"volume"`
	ProfitLoss    float64  `json:"profit_loss"`
	Outcome       string   `json:"outcome"`
	EmotionBefore string   `json:"emotion_before,omitempty"`
	EmotionAfter  string   `json:"emotion_after,omitempty"`
	Source        string   `json:"source,omitempty"`
}

// CreateTradeHandler returns a handler that records one journal trade for
// the authenticated user.
func CreateTradeHandler(repo tradeCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload createTradePayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid create trade payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		payload.Pair = strings.ToUpper(strings.TrimSpace(payload.Pair))
		if payload.Pair == "" {
			http.Error(w, "pair is required", http.StatusBadRequest)
			return
		}
		if payload.Direction != model.TradeDirectionBuy && payload.Direction != model.TradeDirectionSell {
			http.Error(w, "direction must be buy or sell", http.StatusBadRequest)
			return
		}
		if payload.Volume <= 0 {
			http.Error(w, "volume must be positive", http.StatusBadRequest)
			return
		}

		outcome := payload.Outcome
		if outcome == "" {
			outcome = model.TradeOutcomeOpen
		}
		switch outcome {
		case model.TradeOutcomeOpen, model.TradeOutcomeWin, model.TradeOutcomeLoss, model.TradeOutcomeBreakeven:
		default:
			http.Error(w, "invalid outcome", http.StatusBadRequest)
			return
		}

		source := payload.Source
		if source == "" {
			source = model.TradeSourceManual
		}

		trade := &model.Trade{
			UserID:        user.ID,
			Pair:          payload.Pair,
			Direction:     payload.Direction,
			EntryPrice:    payload.EntryPrice,
			ExitPrice:     payload.ExitPrice,
			StopLoss:      payload.StopLoss,
			TakeProfit:    payload.TakeProfit,
			Volume:        payload.Volume,
			ProfitLoss:    payload.ProfitLoss,
			Outcome:       outcome,
			EmotionBefore: payload.EmotionBefore,
			EmotionAfter:  payload.EmotionAfter,
			Source:        source,
		}

		if err := repo.Create(r.Context(), trade); err != nil {
			logger.WithError(err).Error("failed to create trade")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(trade); err != nil {
			logger.WithError(err).Error("failed to encode created trade")
		}
	}
}

// DeleteLastTradeHandler returns a handler that removes the user's most
// recent trade. Backs the "delete last trade" voice command.
func DeleteLastTradeHandler(repo tradeDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		deleted, err := repo.DeleteLastByUser(r.Context(), user.ID)
		if err != nil {
			logger.WithError(err).Error("failed to delete last trade")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if deleted == nil {
			http.Error(w, "no trades to delete", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(deleted); err != nil {
			logger.WithError(err).Error("failed to encode deleted trade")
		}
	}
}

// DefaultSearchTradesHandler wires the handler to the production repository implementation.
func DefaultSearchTradesHandler() http.HandlerFunc {
	return SearchTradesHandler(repository.NewTradeRepository())
}

// DefaultCreateTradeHandler wires the handler to the production repository implementation.
func DefaultCreateTradeHandler() http.HandlerFunc {
	return CreateTradeHandler(repository.NewTradeRepository())
}

// DefaultDeleteLastTradeHandler wires the handler to the production repository implementation.
func DefaultDeleteLastTradeHandler() http.HandlerFunc {
	return DeleteLastTradeHandler(repository.NewTradeRepository())
}
