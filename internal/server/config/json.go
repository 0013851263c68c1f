package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/sealvault/sealvault/internal/flagx"
	"github.com/sealvault/sealvault/internal/timex"
)

// JsonConfig is the DTO for the optional JSON configuration file. It uses
// timex.Duration for interval fields, which accepts both string values such
// as "15m" and integer nanoseconds. After unmarshalling, its fields are
// copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr          string         `json:"endpoint_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config command-line flags into the provided Config. When no flag is
// present nothing is loaded. An unreadable or malformed file panics; a server
// started with a broken config file should not come up.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
}
