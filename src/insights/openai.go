package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	logger "github.com/sirupsen/logrus"
)

const systemPrompt = `You are a trading coach reviewing a trader's journal statistics.
You receive win-rate tables bucketed by instrument pair, weekday and trading session, plus the raw trade sample.
Surface the strongest patterns as insights. Base every claim on the numbers you were given.
Record your findings with the record_insights tool.`

// insightsSchema constrains the tool output to the TradePattern shape.
var insightsSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"insights": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"pattern_type": {"type": "string", "enum": ["pair_based", "time_based", "session_based"]},
					"description": {"type": "string"},
					"win_rate": {"type": "number"},
					"sample_size": {"type": "integer"},
					"confidence": {"type": "number"},
					"recommendation": {"type": "string"}
				},
				"required": ["pattern_type", "description", "win_rate", "sample_size", "confidence", "recommendation"]
			}
		},
		"narrative": {"type": "string"}
	},
	"required": ["insights", "narrative"]
}`)

// OpenAIClient implements Summarizer on top of the OpenAI chat API.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIClient creates a summarizer client from the package config.
func NewOpenAIClient() *OpenAIClient {
	config := GetConfig()
	return NewOpenAIClientWith(config.OpenAIAPIKey, config.OpenAIModel, config.Timeout)
}

// NewOpenAIClientWith creates a summarizer client with explicit settings.
func NewOpenAIClientWith(apiKey, model string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

// Summarize sends the aggregate tables to the model and parses the
// tool-constrained JSON reply. Rate limiting and quota exhaustion come back
// as ErrUnavailable; malformed output degrades to the offline summary
// rather than surfacing a parse error.
func (c *OpenAIClient) Summarize(ctx context.Context, req Request) (*Summary, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal summarizer request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        "record_insights",
					Description: "Record the patterns found in the trader's statistics.",
					Parameters:  insightsSchema,
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: "record_insights"},
		},
	})
	if err != nil {
		if isSoftFailure(err) {
			logger.WithError(err).Warn("[insights] summarizer rate limited or out of quota")
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("summarizer completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	raw := extractArguments(resp.Choices[0].Message)
	if raw == "" {
		logger.Warn("[insights] summarizer returned no structured arguments, using offline summary")
		return OfflineSummary(req), nil
	}

	var summary Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		logger.WithError(err).Warn("[insights] summarizer output not valid JSON, using offline summary")
		return OfflineSummary(req), nil
	}

	return &summary, nil
}

// extractArguments pulls the tool-call arguments, falling back to plain
// message content for models that answer without the tool.
func extractArguments(msg openai.ChatCompletionMessage) string {
	for _, call := range msg.ToolCalls {
		if call.Function.Name == "record_insights" && call.Function.Arguments != "" {
			return call.Function.Arguments
		}
	}
	return msg.Content
}

// isSoftFailure reports whether the API error is a temporary condition:
// HTTP 429 (rate limit), 402/insufficient quota, or a deadline hit.
func isSoftFailure(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests, http.StatusPaymentRequired:
			return true
		}
		if apiErr.Code == "insufficient_quota" {
			return true
		}
	}
	return false
}
