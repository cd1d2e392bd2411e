package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/sealpost/internal/flagx"
	"github.com/dmitrijs2005/sealpost/internal/timex"
)

// JsonConfig is the DTO for the optional JSON configuration file. Interval
// fields use timex.Duration, which accepts both string values such as "60s"
// and integer nanoseconds. After unmarshalling, values are copied into the
// runtime Config.
type JsonConfig struct {
	EndpointAddr   string         `json:"endpoint_addr"`
	DatabaseDSN    string         `json:"database_dsn"`
	TokenLeeway    timex.Duration `json:"token_leeway"`
	ReplayTTLFloor timex.Duration `json:"replay_ttl_floor"`
	AllowedOrigins []string       `json:"allowed_origins"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags, when given. Fields absent from the file keep their
// current values. Read or decode failures panic: a config file that was
// explicitly pointed at but cannot be used is a startup error.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.TokenLeeway.Duration != 0 {
		config.TokenLeeway = c.TokenLeeway.Duration
	}
	if c.ReplayTTLFloor.Duration != 0 {
		config.ReplayTTLFloor = c.ReplayTTLFloor.Duration
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
}
