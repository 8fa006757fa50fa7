package insights

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	OpenAIAPIKey string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	Timeout      time.Duration `envconfig:"SUMMARIZER_TIMEOUT" default:"30s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
