package connectors

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	MT5BridgeBaseURL string `envconfig:"MT5_BRIDGE_BASE_URL" default:"http://localhost:8787"`
	MT5BridgeWSURL   string `envconfig:"MT5_BRIDGE_WS_URL" default:"ws://localhost:8787/stream"`
	MT5DealPageSize  int    `envconfig:"MT5_DEAL_PAGE_SIZE" default:"500"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
