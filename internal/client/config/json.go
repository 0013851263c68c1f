package config

import "encoding/json"

func unmarshalConfig(data []byte, config *Config) error {
	return json.Unmarshal(data, config)
}
