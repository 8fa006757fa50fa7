package connectors

// REST CLIENT FOR THE MT5 BRIDGE
// RESTY ONLY + INTERNAL RETRY

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
)

// -----------------------------
// CONFIG
// -----------------------------
const (
	// Default retry configuration
	defaultRetryAttempts   = 5
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second

	defaultBridgeBaseURL = "http://localhost:8787"
)

// -----------------------------
// BRIDGE TYPES
// -----------------------------

// MT5Credentials identify one terminal session on the bridge. The password
// arrives decrypted; it never leaves this process other than on the bridge
// request headers.
type MT5Credentials struct {
	Server   string
	Login    string
	Password string
}

// MT5Deal is one closed deal as the bridge reports it. Numeric fields come
// over the wire as strings to avoid float truncation on the bridge side.
type MT5Deal struct {
	Ticket     int64  `json:"ticket"`
	Symbol     string `json:"symbol"`
	Type       string `json:"type"` // buy or sell
	Volume     string `json:"volume"`
	EntryPrice string `json:"entry_price"`
	ExitPrice  string `json:"exit_price,omitempty"`
	StopLoss   string `json:"stop_loss,omitempty"`
	TakeProfit string `json:"take_profit,omitempty"`
	Profit     string `json:"profit"`
	OpenedAt   string `json:"opened_at"` // RFC3339
	ClosedAt   string `json:"closed_at,omitempty"`
}

type dealsResponse struct {
	Deals []MT5Deal `json:"deals"`
	Error string    `json:"error,omitempty"`
}

// -----------------------------
// CLIENT
// -----------------------------
type MT5BridgeClient struct {
	baseURL  string
	pageSize int
	http     *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	if r == nil {
		return false
	}

	code := r.StatusCode()

	if code >= 500 && code <= 599 {
		return true
	}
	if code == 429 {
		return true
	}
	if code == 408 {
		return true
	}
	return false
}

func NewMT5BridgeClient(baseURL string, pageSize int) *MT5BridgeClient {
	retryCount := defaultRetryAttempts - 1

	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBridgeBaseURL
		logger.Warnf("No base URL provided, using default: %s", baseURL)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	if pageSize <= 0 {
		pageSize = 500
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(retryCount).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &MT5BridgeClient{
		baseURL:  baseURL,
		pageSize: pageSize,
		http:     httpClient,
	}
}

// DefaultMT5BridgeClient builds a client from the package config.
func DefaultMT5BridgeClient() *MT5BridgeClient {
	config := GetConfig()
	return NewMT5BridgeClient(config.MT5BridgeBaseURL, config.MT5DealPageSize)
}

// FetchDeals lists the account's closed deals with ticket numbers greater
// than sinceTicket, oldest first. The bridge pages internally; one call
// returns at most pageSize deals, so callers loop until an empty page.
func (c *MT5BridgeClient) FetchDeals(
	ctx context.Context,
	creds MT5Credentials,
	sinceTicket int64,
) ([]MT5Deal, error) {

	requestID := uuid.New().String()

	logger.WithFields(map[string]interface{}{
		"connector":    "MT5Bridge",
		"request_id":   requestID,
		"server":       creds.Server,
		"login":        creds.Login,
		"since_ticket": sinceTicket,
	}).Debug("Fetching deals from bridge")

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("X-Request-Id", requestID).
		SetHeader("X-MT5-Server", creds.Server).
		SetHeader("X-MT5-Login", creds.Login).
		SetHeader("X-MT5-Password", creds.Password).
		SetQueryParams(map[string]string{
			"since_ticket": strconv.FormatInt(sinceTicket, 10),
			"limit":        strconv.Itoa(c.pageSize),
		}).
		Get("/deals")

	if err != nil {
		return nil, fmt.Errorf("bridge request failed: %w", err)
	}

	raw := resp.Body()
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode(), string(raw))
	}

	var out dealsResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w. raw=%s", err, string(raw))
	}
	if out.Error != "" {
		return nil, fmt.Errorf("bridge error: %s", out.Error)
	}

	logger.WithFields(map[string]interface{}{
		"connector":  "MT5Bridge",
		"request_id": requestID,
		"deals":      len(out.Deals),
	}).Debug("Bridge deals fetched")

	return out.Deals, nil
}

// Ping verifies the bridge is reachable and the credentials open a session.
func (c *MT5BridgeClient) Ping(ctx context.Context, creds MT5Credentials) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-Id", uuid.New().String()).
		SetHeader("X-MT5-Server", creds.Server).
		SetHeader("X-MT5-Login", creds.Login).
		SetHeader("X-MT5-Password", creds.Password).
		Get("/ping")

	if err != nil {
		return fmt.Errorf("bridge ping failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("bridge ping HTTP %d", resp.StatusCode())
	}
	return nil
}
