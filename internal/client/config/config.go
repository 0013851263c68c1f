// Package config assembles the client configuration from defaults, an
// optional JSON file and command line flags, applied in that order.
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/sealvault/sealvault/internal/flagx"
)

type Config struct {
	ServerEndpointAddr string `json:"address"`
	Subject            string `json:"subject"`
	Email              string `json:"email"`
}

func loadDefaults() *Config {
	return &Config{
		ServerEndpointAddr: "http://127.0.0.1:8080",
	}
}

func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "server address")
	fs.StringVar(&config.Subject, "u", config.Subject, "account subject")
	fs.StringVar(&config.Email, "e", config.Email, "account email")

	return fs.Parse(flagx.FilterArgs(args, []string{"-a", "-u", "-e"}))
}

func parseJson(config *Config) error {
	fileName := flagx.JsonConfigFlags()
	if fileName == "" {
		return nil
	}

	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return unmarshalConfig(data, config)
}

func LoadConfig() (*Config, error) {
	config := loadDefaults()

	if err := parseJson(config); err != nil {
		return nil, err
	}
	if err := parseFlags(config, os.Args[1:]); err != nil {
		return nil, err
	}

	return config, nil
}
