package executors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	SyncPeriod     time.Duration `envconfig:"SYNC_PERIOD" default:"60s"`
	AnalysisPeriod time.Duration `envconfig:"ANALYSIS_PERIOD" default:"24h"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
