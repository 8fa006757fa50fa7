package security

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// BrokerCRKey is a base64-encoded 32 byte AES key used to encrypt
	// linked broker credentials at rest.
	BrokerCRKey string `envconfig:"BROKER_CREDENTIALS_KEY"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
