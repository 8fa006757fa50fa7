package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"
)

const streamReadTimeout = 90 * time.Second

// DealHandler consumes one pushed deal event.
type DealHandler func(deal MT5Deal)

// MT5DealStream subscribes to the bridge's websocket feed of closed deals.
// It covers the gap between sync ticks; the REST pull remains the source of
// truth for reconciliation.
type MT5DealStream struct {
	url string
}

func NewMT5DealStream(url string) *MT5DealStream {
	return &MT5DealStream{url: url}
}

// Subscribe connects and delivers pushed deals to the handler until the
// context is cancelled or the connection drops. The caller owns reconnects;
// a clean context cancellation returns ctx.Err().
func (s *MT5DealStream) Subscribe(
	ctx context.Context,
	creds MT5Credentials,
	handler DealHandler,
) error {

	header := http.Header{}
	header.Set("X-MT5-Server", creds.Server)
	header.Set("X-MT5-Login", creds.Login)
	header.Set("X-MT5-Password", creds.Password)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
	if err != nil {
		return fmt.Errorf("bridge stream dial failed: %w", err)
	}
	defer conn.Close()

	logger.WithFields(map[string]interface{}{
		"connector": "MT5DealStream",
		"server":    creds.Server,
		"login":     creds.Login,
	}).Info("Subscribed to bridge deal stream")

	// Close the socket when the context ends so ReadMessage unblocks.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(streamReadTimeout)); err != nil {
			return err
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("bridge stream read failed: %w", err)
		}

		var deal MT5Deal
		if err := json.Unmarshal(raw, &deal); err != nil {
			logger.WithError(err).Warn("Dropping malformed stream event")
			continue
		}

		handler(deal)
	}
}
