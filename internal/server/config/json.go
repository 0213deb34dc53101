package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/accounts/internal/flagx"
	"github.com/dmitrijs2005/accounts/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "1m" or integer
// nanoseconds. Absent fields keep their current value.
type JsonConfig struct {
	EndpointAddrHTTP    *string         `json:"endpoint_addr_http"`
	DatabaseDSN         *string         `json:"database_dsn"`
	SecretKey           *string         `json:"secret_key"`
	SweepInterval       *timex.Duration `json:"sweep_interval"`
	InactivityThreshold *timex.Duration `json:"inactivity_threshold"`
	AuthRateLimit       *int            `json:"auth_rate_limit"`
	LogLevel            *string         `json:"log_level"`
}

// parseJson overlays the file given with -c/-config. It panics when the file
// cannot be read or parsed.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}
	if err := readJsonFile(config, path); err != nil {
		panic(err)
	}
}

func readJsonFile(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.AuthRateLimit, c.AuthRateLimit)
	setIf(&config.LogLevel, c.LogLevel)
	if c.SweepInterval != nil {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.InactivityThreshold != nil {
		config.InactivityThreshold = c.InactivityThreshold.Duration
	}
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
